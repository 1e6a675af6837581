package cli

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataPathEmpty      = errors.New("data_path cannot be empty")
	ErrUnknownSampler     = errors.New("unknown sampler")
	ErrScoresRequired     = errors.New("sampler needs a scores file (--scores or scores_path)")
	ErrDecoderRequired    = errors.New("decoder file argument is required")
	ErrBadKeyProb         = errors.New("key_prob must be in [0, 1)")
	ErrBadRepetitions     = errors.New("n_repetitions must be positive")
)
