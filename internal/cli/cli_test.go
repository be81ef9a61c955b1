package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/rcliao/eliza/internal/config"
	"github.com/rcliao/eliza/internal/model"
	"github.com/rcliao/eliza/internal/script"
	"github.com/rcliao/eliza/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// withConfig points the package configuration at a scratch database for
// the duration of a test.
func withConfig(t *testing.T) *store.SQLiteStore {
	t.Helper()
	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	cfg = config.DefaultConfig()
	cfg.DB = filepath.Join(t.TempDir(), "sessions.db")
	logger = zap.NewNop()

	s, err := openStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestChatResumesSession(t *testing.T) {
	ctx := context.Background()
	s := withConfig(t)

	c, err := openConversation(ctx, s, "", false)
	require.NoError(t, err)
	assert.True(t, c.fresh)

	var out bytes.Buffer
	in := "Men are all alike.\n\nThey're always bugging us about something or other.\n"
	require.NoError(t, chat(ctx, c, strings.NewReader(in), &out, chatOptions{}))
	assert.Equal(t,
		"HOW DO YOU DO. PLEASE TELL ME YOUR PROBLEM\nIN WHAT WAY\nCAN YOU THINK OF A SPECIFIC EXAMPLE\n",
		out.String())

	// A second invocation picks up where the first stopped.
	again, err := openConversation(ctx, s, "", false)
	require.NoError(t, err)
	assert.Equal(t, c.id, again.id)
	assert.False(t, again.fresh)

	out.Reset()
	require.NoError(t, chat(ctx, again, strings.NewReader("Well, my boyfriend made me come here.\n"), &out, chatOptions{}))
	assert.Equal(t, "(session "+c.id+")\nYOUR BOYFRIEND MADE YOU COME HERE\n", out.String())

	sess, err := s.Get(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, 3, sess.Turns)
	assert.Equal(t, 4, sess.State.Counter)
	assert.Len(t, sess.State.Memories, 1)

	fresh, err := openConversation(ctx, s, "", true)
	require.NoError(t, err)
	assert.NotEqual(t, c.id, fresh.id)
}

func TestChatTrace(t *testing.T) {
	ctx := context.Background()
	s := withConfig(t)

	c, err := openConversation(ctx, s, "", true)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, chat(ctx, c, strings.NewReader("Men are all alike.\n"), &out, chatOptions{trace: true}))
	assert.Contains(t, out.String(), "; keywords: ALIKE ARE\n")
	assert.Contains(t, out.String(), "; ALIKE: link to DIT\n")
}

func TestChatPrompt(t *testing.T) {
	ctx := context.Background()
	s := withConfig(t)

	c, err := openConversation(ctx, s, "", true)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, chat(ctx, c, strings.NewReader("My father.\n"), &out, chatOptions{prompt: "> "}))
	assert.Equal(t, "HOW DO YOU DO. PLEASE TELL ME YOUR PROBLEM\n> TELL ME MORE ABOUT YOUR FAMILY\n> ", out.String())
}

func TestChatWrapsReplies(t *testing.T) {
	ctx := context.Background()
	s := withConfig(t)
	cfg.Width = 20

	c, err := openConversation(ctx, s, "", true)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, chat(ctx, c, strings.NewReader(""), &out, chatOptions{}))
	assert.Equal(t, "HOW DO YOU DO.\nPLEASE TELL ME YOUR\nPROBLEM\n", out.String())
}

func TestOpenConversationUnknownSession(t *testing.T) {
	s := withConfig(t)
	_, err := openConversation(context.Background(), s, "01NOSUCHSESSION", false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCustomScriptSession(t *testing.T) {
	ctx := context.Background()
	s := withConfig(t)
	cfg.Script = writeFile(t, "echo.txt", `(SAY SOMETHING)
(ECHO ((0 ECHO 0) (YOU SAID 3)))
(MEMORY MY (0 = A) (0 = B) (0 = C) (0 = D))
(NONE ((0) (GO ON)))
`)

	c, err := openConversation(ctx, s, "", false)
	require.NoError(t, err)
	turn, err := c.reply(ctx, "echo hello there")
	require.NoError(t, err)
	assert.Equal(t, "YOU SAID HELLO THERE", turn.Reply)

	sess, err := s.Get(ctx, c.id)
	require.NoError(t, err)
	assert.Equal(t, cfg.Script, sess.Script)
	assert.Equal(t, "SAY SOMETHING", sess.Greeting)
}

func TestReplayAll(t *testing.T) {
	sc, err := script.LoadDoctor()
	require.NoError(t, err)

	first := writeFile(t, "first.txt", "# opening\nMen are all alike.\n\nThey're always bugging us about something or other.\n")
	second := writeFile(t, "second.txt", "Men are all alike.\nMen are all alike.\n")
	third := writeFile(t, "third.txt", "My father.\n")

	results, err := replayAll(context.Background(), sc, []string{first, second, third})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, first, results[0].File)
	require.Len(t, results[0].Turns, 2)
	assert.Equal(t, "IN WHAT WAY", results[0].Turns[0].Reply)
	assert.Equal(t, "CAN YOU THINK OF A SPECIFIC EXAMPLE", results[0].Turns[1].Reply)

	// Each file has a session of its own.
	assert.Equal(t, "IN WHAT WAY", results[1].Turns[0].Reply)
	assert.NotEqual(t, "IN WHAT WAY", results[1].Turns[1].Reply)

	assert.Equal(t, "TELL ME MORE ABOUT YOUR FAMILY", results[2].Turns[0].Reply)
	assert.Equal(t, "HOW DO YOU DO. PLEASE TELL ME YOUR PROBLEM", results[2].Greeting)
}

func TestReplayAllMissingFile(t *testing.T) {
	sc, err := script.LoadDoctor()
	require.NoError(t, err)
	ok := writeFile(t, "ok.txt", "hello\n")

	_, err = replayAll(context.Background(), sc, []string{ok, filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestHashWord(t *testing.T) {
	r, err := hashWord("always", 7)
	require.NoError(t, err)
	assert.Equal(t, "ALWAYS", r.Word)
	assert.Equal(t, 14, r.Hash)
	assert.Equal(t, []string{"ALWAYS"}, r.Chunks)

	r, err = hashWord("here", 2)
	require.NoError(t, err)
	assert.Equal(t, "302551256060", r.Packed)
	assert.Equal(t, 3, r.Hash)

	_, err = hashWord("x", 0)
	assert.Error(t, err)
	_, err = hashWord("x", 16)
	assert.Error(t, err)
}

func TestCheckScript(t *testing.T) {
	sum, err := checkScript("")
	require.NoError(t, err)
	assert.Equal(t, "doctor", sum.Name)
	assert.Equal(t, "MY", sum.MemoryKeyword)
	assert.Empty(t, sum.Links)

	var out bytes.Buffer
	printSummary(&out, sum)
	assert.Contains(t, out.String(), "/FAMILY: MOTHER MOM DAD FATHER SISTER BROTHER WIFE CHILDREN")
	assert.Contains(t, out.String(), "keywords: SORRY DONT CANT WONT ")

	bad := writeFile(t, "bad.txt", "(HI)\n(NONE ((0) (X)))\n")
	_, err = checkScript(bad)
	var serr *script.Error
	assert.ErrorAs(t, err, &serr)

	_, err = checkScript(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "read script")
}

func TestScanInputs(t *testing.T) {
	lines, err := scanInputs(strings.NewReader("  one \n#skip\n\ntwo"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestReadInput(t *testing.T) {
	got, err := readInput([]string{" Men are", "all alike. "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Men are all alike.", got)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("  They're always bugging us.\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	got, err = readInput(nil, r)
	require.NoError(t, err)
	assert.Equal(t, "They're always bugging us.", got)
	require.NoError(t, r.Close())

	// Stat fails on a closed file.
	got, err = readInput(nil, r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eliza", "config.yaml")
	c := config.DefaultConfig()
	c.Width = 40
	c.Script = "doctor"
	require.NoError(t, initConfig(path, c, false))

	t.Setenv("ELIZA_SCRIPT", "")
	t.Setenv("ELIZA_DB", "")
	t.Setenv("ELIZA_LOG_LEVEL", "")
	t.Setenv("ELIZA_WIDTH", "")
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.Width)
	assert.Equal(t, "doctor", loaded.Script)

	c.Width = 50
	assert.ErrorContains(t, initConfig(path, c, false), "already exists")
	require.NoError(t, initConfig(path, c, true))
	loaded, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.Width)
}

func TestPrintTranscriptIndentsInput(t *testing.T) {
	withConfig(t)
	cfg.Width = 24

	var out bytes.Buffer
	printTranscript(&out, model.Transcript{
		Session: model.Session{Greeting: "HOW DO YOU DO"},
		Turns: []model.Turn{
			{Seq: 1, Input: "Well, my boyfriend made me come here.", Reply: "YOUR BOYFRIEND MADE YOU COME HERE"},
		},
	})
	assert.Equal(t,
		"HOW DO YOU DO\n"+
			"> Well, my boyfriend\n"+
			"  made me come here.\n"+
			"YOUR BOYFRIEND MADE YOU\n"+
			"COME HERE\n",
		out.String())
}

// execute runs the CLI against db and returns what it printed. Flag
// values outlive a run, so every flag is put back to its default first.
func execute(t *testing.T, db string, args ...string) string {
	t.Helper()
	cmd, _, err := RootCmd.Find(args)
	require.NoError(t, err)
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	RootCmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(append(args,
		"--db", db,
		"--config", filepath.Join(t.TempDir(), "config.yaml")))
	require.NoError(t, RootCmd.Execute(), "eliza %s", strings.Join(args, " "))
	return out.String()
}

func TestCommands(t *testing.T) {
	withConfig(t)
	db := cfg.DB
	for _, k := range []string{"ELIZA_SCRIPT", "ELIZA_DB", "ELIZA_LOG_LEVEL", "ELIZA_WIDTH"} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})

	assert.Equal(t, "IN WHAT WAY\n",
		execute(t, db, "respond", "--format", "text", "Men are all alike."))

	id := strings.TrimSpace(execute(t, db, "sessions", "--ids-only"))
	require.Len(t, id, 26)
	prefix := id[:12]
	exported := filepath.Join(t.TempDir(), "export.json")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "respond resumes by prefix",
			args: []string{"respond", "--format", "text", "--session", prefix,
				"They're always bugging us about something or other."},
			check: func(t *testing.T, out string) {
				assert.Equal(t, "CAN YOU THINK OF A SPECIFIC EXAMPLE\n", out)
			},
		},
		{
			name: "respond json",
			args: []string{"respond", "--session", prefix, "Well, my boyfriend made me come here."},
			check: func(t *testing.T, out string) {
				var turn model.Turn
				require.NoError(t, json.Unmarshal([]byte(out), &turn))
				assert.Equal(t, id, turn.SessionID)
				assert.Equal(t, 3, turn.Seq)
				assert.Equal(t, "YOUR BOYFRIEND MADE YOU COME HERE", turn.Reply)
			},
		},
		{
			name: "sessions text",
			args: []string{"sessions", "--format", "text"},
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, id+"  doctor"), out)
				assert.Contains(t, out, "   3 turns")
			},
		},
		{
			name: "show text",
			args: []string{"show", "--format", "text", "--session", prefix},
			check: func(t *testing.T, out string) {
				assert.Equal(t,
					"HOW DO YOU DO. PLEASE TELL ME YOUR PROBLEM\n"+
						"> Men are all alike.\n"+
						"IN WHAT WAY\n"+
						"> They're always bugging us about something or other.\n"+
						"CAN YOU THINK OF A SPECIFIC EXAMPLE\n"+
						"> Well, my boyfriend made me come here.\n"+
						"YOUR BOYFRIEND MADE YOU COME HERE\n",
					out)
			},
		},
		{
			name: "search text",
			args: []string{"search", "--format", "text", "bugging"},
			check: func(t *testing.T, out string) {
				assert.Equal(t,
					id+" #2\n> They're always bugging us about something or other.\nCAN YOU THINK OF A SPECIFIC EXAMPLE\n\n",
					out)
			},
		},
		{
			name: "search json without hits",
			args: []string{"search", "girlfriend"},
			check: func(t *testing.T, out string) {
				assert.Equal(t, "[]\n", out)
			},
		},
		{
			name: "export",
			args: []string{"export", "--session", prefix},
			check: func(t *testing.T, out string) {
				var trs []model.Transcript
				require.NoError(t, json.Unmarshal([]byte(out), &trs))
				require.Len(t, trs, 1)
				assert.Equal(t, id, trs[0].Session.ID)
				assert.Len(t, trs[0].Turns, 3)
				require.NoError(t, os.WriteFile(exported, []byte(out), 0644))
			},
		},
		{
			name: "import existing session is skipped",
			args: []string{"import", exported},
			check: func(t *testing.T, out string) {
				assert.Equal(t, `{"ok":true,"imported":0,"skipped":1}`+"\n", out)
			},
		},
		{
			name: "rm hard",
			args: []string{"rm", "--hard", "--session", prefix},
			check: func(t *testing.T, out string) {
				assert.Equal(t, `{"ok":true,"session":"`+prefix+`","hard":true}`+"\n", out)
			},
		},
		{
			name: "sessions empty after rm",
			args: []string{"sessions", "--ids-only"},
			check: func(t *testing.T, out string) {
				assert.Empty(t, out)
			},
		},
		{
			name: "import restores the session",
			args: []string{"import", exported},
			check: func(t *testing.T, out string) {
				assert.Equal(t, `{"ok":true,"imported":1,"skipped":0}`+"\n", out)
			},
		},
		{
			name: "show json after import",
			args: []string{"show", "--session", id},
			check: func(t *testing.T, out string) {
				var tr model.Transcript
				require.NoError(t, json.Unmarshal([]byte(out), &tr))
				assert.Equal(t, 4, tr.Session.State.Counter)
				require.Len(t, tr.Turns, 3)
				assert.Equal(t, "Men are all alike.", tr.Turns[0].Input)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, execute(t, db, tt.args...))
		})
	}
}
