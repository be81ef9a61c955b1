package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/eliza"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/store"
)

// conversation is an engine session bound to its stored record.
type conversation struct {
	id     string
	fresh  bool
	engine *eliza.Session
	store  store.Store
}

// openConversation resumes session id, or when id is empty the most
// recent session for the configured script. With fresh set, or when
// there is nothing to resume, a new session is created.
func openConversation(ctx context.Context, st store.Store, id string, fresh bool) (*conversation, error) {
	if id == "" && !fresh {
		_, name, err := loadScript(cfg.Script)
		if err != nil {
			return nil, err
		}
		recent, err := st.List(ctx, store.ListParams{Script: name, Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(recent) > 0 {
			id = recent[0].ID
		}
	}
	if id != "" {
		sess, err := st.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return resume(st, sess)
	}

	sc, name, err := loadScript(cfg.Script)
	if err != nil {
		return nil, err
	}
	e := eliza.New(sc, eliza.WithLogger(logger.Named("eliza")))
	sess, err := st.Create(ctx, store.CreateParams{
		Script:   name,
		Greeting: e.Greeting(),
		State:    e.Snapshot(),
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("session created", zap.String("session", sess.ID), zap.String("script", name))
	return &conversation{id: sess.ID, fresh: true, engine: e, store: st}, nil
}

func resume(st store.Store, sess *model.Session) (*conversation, error) {
	sc, _, err := loadScript(sess.Script)
	if err != nil {
		return nil, err
	}
	e := eliza.New(sc, eliza.WithLogger(logger.Named("eliza").With(zap.String("session", sess.ID))))
	if err := e.Restore(sess.State); err != nil {
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	logger.Debug("session resumed", zap.String("session", sess.ID), zap.Int("turns", sess.Turns))
	return &conversation{id: sess.ID, engine: e, store: st}, nil
}

// reply answers input and records the exchange.
func (c *conversation) reply(ctx context.Context, input string) (*model.Turn, error) {
	r := c.engine.Response(input)
	return c.store.Record(ctx, store.RecordParams{
		SessionID: c.id,
		Input:     input,
		Reply:     r,
		State:     c.engine.Snapshot(),
	})
}
