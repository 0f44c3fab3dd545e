package cluster

// SplitByDurations cuts pcm into len(durationsMS) consecutive chunks, each
// sized to its target duration, with the final chunk absorbing whatever
// remains so the pieces always sum to the full input. Chunks that land
// beyond the buffer's end (input shorter than the target spans) come back
// as a single silent sample rather than empty.
func SplitByDurations(pcm PCM, durationsMS []int) []PCM {
	total := len(pcm.Samples)
	sr := pcm.SampleRate
	pos := 0
	out := make([]PCM, 0, len(durationsMS))

	for i, durMS := range durationsMS {
		n := msToSamples(durMS, sr)
		if i == len(durationsMS)-1 {
			n = max0(total - pos)
		}
		end := minInt(total, pos+n)
		out = append(out, sliceOrSilence(pcm, pos, end, sr))
		pos = end
	}
	return out
}

// SplitByDurationsSmart behaves like SplitByDurations but snaps each cut
// point to the locally quietest frame within searchMS of the target,
// computed over winMS-wide envelope windows, so a split lands in a natural
// pause rather than mid-word. The final chunk still absorbs the remainder.
func SplitByDurationsSmart(pcm PCM, durationsMS []int, winMS, searchMS int) []PCM {
	if winMS <= 0 {
		winMS = 20
	}
	if searchMS <= 0 {
		searchMS = 250
	}

	total := len(pcm.Samples)
	sr := pcm.SampleRate
	env := envelope(pcm, winMS)
	pos := 0
	out := make([]PCM, 0, len(durationsMS))

	for i, durMS := range durationsMS {
		curMS := samplesToMS(pos, sr)
		targetMS := curMS + max0(durMS)
		cutMS := nearestLowEnergyMS(env, targetMS, winMS, searchMS)
		n := msToSamples(cutMS, sr) - pos

		if i == len(durationsMS)-1 {
			n = max0(total - pos)
		}
		end := minInt(total, pos+max0(n))
		out = append(out, sliceOrSilence(pcm, pos, end, sr))
		pos = end
	}
	return out
}

// Envelope computes a coarse per-window RMS-style energy profile. It is
// exported for reuse by the post-flight sync audit, which needs the same
// windowed-energy view to locate a cue's actual speech onset.
func Envelope(pcm PCM, winMS int) []float64 {
	return envelope(pcm, winMS)
}

// envelope computes a coarse per-window RMS-style energy profile used to
// locate quiet points for smart splitting.
func envelope(pcm PCM, winMS int) []float64 {
	windowSamples := msToSamples(winMS, pcm.SampleRate)
	if windowSamples <= 0 {
		windowSamples = 1
	}
	n := (len(pcm.Samples) + windowSamples - 1) / windowSamples
	if n == 0 {
		n = 1
	}
	out := make([]float64, n)
	for w := 0; w < n; w++ {
		start := w * windowSamples
		end := minInt(len(pcm.Samples), start+windowSamples)
		var sumSquares float64
		for i := start; i < end; i++ {
			v := float64(pcm.Samples[i])
			sumSquares += v * v
		}
		count := end - start
		if count > 0 {
			out[w] = sumSquares / float64(count)
		}
	}
	return out
}

func nearestLowEnergyMS(env []float64, targetMS, winMS, searchMS int) int {
	if len(env) == 0 {
		return targetMS
	}
	idx := targetMS / winMS
	span := searchMS / winMS
	lo := max0(idx - span)
	hi := minInt(len(env)-1, idx+span)
	if hi <= lo || idx < 0 || idx >= len(env) {
		return targetMS
	}

	minVal := env[idx]
	minPos := idx
	for j := lo; j <= hi; j++ {
		if env[j] < minVal {
			minVal = env[j]
			minPos = j
		}
	}
	return minPos * winMS
}

func sliceOrSilence(pcm PCM, start, end, sampleRate int) PCM {
	if end <= start {
		return PCM{SampleRate: sampleRate, Samples: []int16{0}}
	}
	chunk := make([]int16, end-start)
	copy(chunk, pcm.Samples[start:end])
	return PCM{SampleRate: sampleRate, Samples: chunk}
}

func msToSamples(ms, sampleRate int) int {
	return int(float64(ms) / 1000.0 * float64(sampleRate))
}

func samplesToMS(samples, sampleRate int) int {
	if sampleRate == 0 {
		return 0
	}
	return int(float64(samples) / float64(sampleRate) * 1000.0)
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
