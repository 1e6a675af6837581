package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"chordpref/internal/keyboard"
	"chordpref/internal/trial"
	"chordpref/internal/vocab"
)

const dirPerms = 0o750

// GatherCmd returns the gather_chords command: load a persisted decoder,
// run the collection loop, persist the accepted trials.
func GatherCmd(env map[string]string, stdin io.Reader) *Command {
	fs := flag.NewFlagSet("gather_chords", flag.ContinueOnError)
	flagConfig := fs.StringP("config", "c", "", "Use specified config `file`")
	flagDataPath := fs.String("data-path", "", "Override the data `directory`")
	flagSeed := fs.Uint64("seed", 0, "Seed the session RNG (0 means random)")

	return &Command{
		Flags: fs,
		Usage: "gather_chords [flags] <decoder-file>",
		Short: "Run a chord data-collection session",
		Long: "Load a vocabulary and prefix tree from a decoder file, run the\n" +
			"interactive trial loop, and write the accepted trials to\n" +
			"$DATA_PATH/chord_preferences_results_<unix_ts>.json.",
		Exec: func(o *IO, args []string) error {
			cfg, err := LoadConfig(LoadConfigInput{
				ConfigPath:       *flagConfig,
				DataPathOverride: *flagDataPath,
				Env:              env,
			})
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return ErrDecoderRequired
			}

			return execGather(o, cfg, stdin, args[0], *flagSeed)
		},
	}
}

func execGather(o *IO, cfg Config, stdin io.Reader, decoderPath string, seed uint64) error {
	spec := keyboard.NewTwiddlerSpec()
	table := keyboard.NewTwiddlerTable()

	dec, err := vocab.LoadDecoder(decoderPath, spec, table)
	if err != nil {
		return fmt.Errorf("loading decoder %s: %w", decoderPath, err)
	}

	reader, closer := newLineReader(stdin)
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	sess, err := trial.NewSession(dec, newRNG(seed), reader, o.Out(), trial.SessionOptions{
		NRepetitions: cfg.NRepetitions,
		Policy:       trial.AlignPolicy{CollapseRepeatInsertions: cfg.CollapseRepeatInsertions},
	})
	if err != nil {
		return err
	}

	results, runErr := sess.Run()

	// Whatever ended the session, the accepted trials are persisted.
	if err := os.MkdirAll(cfg.DataPath, dirPerms); err != nil {
		return err
	}

	path := filepath.Join(cfg.DataPath, fmt.Sprintf("chord_preferences_results_%d.json", time.Now().Unix()))

	if err := results.Save(path); err != nil {
		return err
	}

	o.Printf("saved %d trials to:\n%s\n", len(results.Data), path)

	return runErr
}
