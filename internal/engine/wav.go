package engine

import "redub/internal/cluster"

// wavDurationMS returns the duration, in milliseconds, of a mono 16-bit
// PCM WAV file. Used to compute the natural-speed ratio Mode B stretches
// each video segment by.
func wavDurationMS(path string) (int, error) {
	pcm, err := cluster.ReadWavFile(path)
	if err != nil {
		return 0, err
	}
	return pcm.DurationMS(), nil
}
