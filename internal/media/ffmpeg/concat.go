package ffmpeg

import (
	"fmt"
	"os"
	"strings"
)

func writeConcatList(parts []string) (string, error) {
	file, err := os.CreateTemp("", "redub-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer file.Close()

	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(fmt.Sprintf("file '%s'\n", escapeConcatPath(part)))
	}
	if _, err := file.WriteString(sb.String()); err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

func removeFile(path string) {
	_ = os.Remove(path)
}
