package cluster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"redub/internal/rerr"
)

const stageWav = "clusterer"
const opReadWav = "read_wav"
const opWriteWav = "write_wav"

// PCM is mono 16-bit little-endian PCM audio, the format
// internal/media/ffmpeg.Client.ToMonoPCM normalizes every TTS segment into
// before clustering or splitting ever sees it.
type PCM struct {
	SampleRate int
	Samples    []int16
}

// DurationMS returns the PCM buffer's length in milliseconds.
func (p PCM) DurationMS() int {
	if p.SampleRate <= 0 {
		return 0
	}
	return len(p.Samples) * 1000 / p.SampleRate
}

// ReadWavFile parses a canonical mono 16-bit PCM WAV file.
func ReadWavFile(path string) (PCM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav, path, err)
	}
	return ReadWav(data)
}

// ReadWav parses canonical mono 16-bit PCM WAV bytes.
func ReadWav(data []byte) (PCM, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav,
			"not a RIFF/WAVE file", nil)
	}

	var sampleRate int
	var numChannels uint16
	var bitsPerSample uint16
	var pcmData []byte

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav,
					"fmt chunk too short", nil)
			}
			numChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			pcmData = data[body : body+chunkSize]
		}

		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if sampleRate == 0 || pcmData == nil {
		return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav,
			"missing fmt or data chunk", nil)
	}
	if numChannels != 1 {
		return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav,
			fmt.Sprintf("expected mono audio, got %d channels", numChannels), nil)
	}
	if bitsPerSample != 16 {
		return PCM{}, rerr.Wrap(rerr.ErrInputInvalid, stageWav, opReadWav,
			fmt.Sprintf("expected 16-bit PCM, got %d bits", bitsPerSample), nil)
	}

	samples := make([]int16, len(pcmData)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcmData[i*2 : i*2+2]))
	}
	return PCM{SampleRate: sampleRate, Samples: samples}, nil
}

// WriteWavFile writes pcm out as a canonical mono 16-bit PCM WAV file.
func WriteWavFile(path string, pcm PCM) error {
	data := WriteWav(pcm)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rerr.Wrap(rerr.ErrToolFailure, stageWav, opWriteWav, path, err)
	}
	return nil
}

// WriteWav serializes pcm as canonical mono 16-bit PCM WAV bytes.
func WriteWav(pcm PCM) []byte {
	pcmBytes := make([]byte, len(pcm.Samples)*2)
	for i, s := range pcm.Samples {
		binary.LittleEndian.PutUint16(pcmBytes[i*2:i*2+2], uint16(s))
	}

	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcmBytes)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(pcm.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(pcm.SampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcmBytes)))
	buf.Write(pcmBytes)

	return buf.Bytes()
}
