package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoParticipants is returned when a participant list file is empty after
// stripping blanks, comments, and (for destinations) the sender itself.
// It is a configuration error: surfaced before any network activity.
var ErrNoParticipants = errors.New("participant list is empty")

// commentMarker prefixes lines that are ignored in participant files.
const commentMarker = "#"

// LoadSecrets reads a line-delimited secret list for a collect run. Blank
// lines and comment lines are ignored. Secrets are not validated here;
// undecodable entries become per-participant skips during the run.
func LoadSecrets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open secret list %s: %w", path, err)
	}
	defer f.Close()

	secrets, err := readParticipantLines(f)
	if err != nil {
		return nil, fmt.Errorf("read secret list %s: %w", path, err)
	}
	if len(secrets) == 0 {
		return nil, fmt.Errorf("secret list %s: %w", path, ErrNoParticipants)
	}
	return secrets, nil
}

// LoadDestinations reads a line-delimited destination list for a distribute
// run. Entries equal to the sender's address are filtered out here, before
// the loop ever starts, so the self-transfer guard never fires mid-batch.
func LoadDestinations(path, sender string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open destination list %s: %w", path, err)
	}
	defer f.Close()

	all, err := readParticipantLines(f)
	if err != nil {
		return nil, fmt.Errorf("read destination list %s: %w", path, err)
	}

	destinations := make([]string, 0, len(all))
	for _, d := range all {
		if d == sender {
			continue
		}
		destinations = append(destinations, d)
	}
	if len(destinations) == 0 {
		return nil, fmt.Errorf("destination list %s: %w", path, ErrNoParticipants)
	}
	return destinations, nil
}

// readParticipantLines strips blanks and comment lines, trimming whitespace
// from what remains.
func readParticipantLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
