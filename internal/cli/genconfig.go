package cli

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"chordpref/internal/code"
	"chordpref/internal/keyboard"
	"chordpref/internal/vocab"
)

// GenConfigCmd returns the gen_config command: build a prefix code, bind
// it to sampled chords, and emit the keyboard config plus decoder file.
func GenConfigCmd(env map[string]string, _ io.Reader) *Command {
	fs := flag.NewFlagSet("gen_config", flag.ContinueOnError)
	flagConfig := fs.StringP("config", "c", "", "Use specified config `file`")
	flagDataPath := fs.String("data-path", "", "Override the data `directory`")
	flagSampler := fs.String("sampler", "", "Chord sampler: exponential, possible, or uncertain")
	flagScores := fs.String("scores", "", "Reward-model scores `file` for model-driven samplers")
	flagSeed := fs.Uint64("seed", 0, "Seed the sampling RNG (0 means random)")

	return &Command{
		Flags: fs,
		Usage: "gen_config [flags]",
		Short: "Generate a keyboard config and trial decoder",
		Long: "Build a prefix code under the hardware capacity caps, bind each\n" +
			"code word to a sampled chord, and write the binary keyboard config\n" +
			"and the vocabulary+tree decoder file under $DATA_PATH.",
		Exec: func(o *IO, args []string) error {
			cfg, err := LoadConfig(LoadConfigInput{
				ConfigPath:       *flagConfig,
				DataPathOverride: *flagDataPath,
				Env:              env,
			})
			if err != nil {
				return err
			}

			if *flagSampler != "" {
				cfg.Sampler = *flagSampler

				if err := validateConfig(cfg); err != nil {
					return err
				}
			}

			if *flagScores != "" {
				cfg.ScoresPath = *flagScores
			}

			return execGenConfig(o, cfg, *flagSeed)
		},
	}
}

func execGenConfig(o *IO, cfg Config, seed uint64) error {
	spec := keyboard.NewTwiddlerSpec()
	table := keyboard.NewTwiddlerTable()

	built, err := code.Build(table.Size())
	if err != nil {
		return err
	}

	sampler, err := buildSampler(cfg, spec, newRNG(seed))
	if err != nil {
		return err
	}

	v, err := vocab.Bind(built, table, sampler)
	if err != nil {
		return err
	}

	blob, err := keyboard.EmitConfig(v.Bindings())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataPath, dirPerms); err != nil {
		return err
	}

	ts := time.Now().Unix()

	configPath := filepath.Join(cfg.DataPath, fmt.Sprintf("config_%d.cfg", ts))
	if err := atomic.WriteFile(configPath, bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	decoderPath := filepath.Join(cfg.DataPath, fmt.Sprintf("decoder_%d.json", ts))
	if err := vocab.SaveDecoder(decoderPath, v, built.Tree); err != nil {
		return fmt.Errorf("writing decoder: %w", err)
	}

	o.Printf("generated config file:\n%s\n", configPath)
	o.Printf("generated decoder file:\n%s\n", decoderPath)

	return nil
}

// buildSampler selects the sampling strategy. The model-driven samplers
// need a reward-model scores file; the exponential sampler does not.
func buildSampler(cfg Config, spec *keyboard.Spec, rng *rand.Rand) (vocab.Sampler, error) {
	switch cfg.Sampler {
	case SamplerExponential:
		return vocab.NewExponentialSampler(rng, spec, cfg.KeyProb)
	case SamplerPossible:
		scores, err := loadSamplerScores(cfg, spec)
		if err != nil {
			return nil, err
		}

		return vocab.NewPossibleWeightedSampler(rng, scores)
	case SamplerUncertain:
		scores, err := loadSamplerScores(cfg, spec)
		if err != nil {
			return nil, err
		}

		return vocab.NewMostUncertainSampler(rng, scores)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSampler, cfg.Sampler)
	}
}

func loadSamplerScores(cfg Config, spec *keyboard.Spec) ([]vocab.ScoredChord, error) {
	if cfg.ScoresPath == "" {
		return nil, ErrScoresRequired
	}

	return vocab.LoadScores(cfg.ScoresPath, spec)
}
