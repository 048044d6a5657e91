package lcu

import (
	"fmt"
	"os"
	"strings"
)

// Lockfile is written by the running client as name:pid:port:password:protocol.
type Lockfile struct {
	ProcessName string
	PID         string
	Port        string
	Password    string
	Protocol    string
}

func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return ParseLockfile(string(data))
}

func ParseLockfile(content string) (*Lockfile, error) {
	parts := strings.Split(strings.TrimSpace(content), ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("invalid lockfile format: expected 5 parts, got %d", len(parts))
	}
	lf := &Lockfile{
		ProcessName: parts[0],
		PID:         parts[1],
		Port:        parts[2],
		Password:    parts[3],
		Protocol:    parts[4],
	}
	if lf.Port == "" || lf.Password == "" {
		return nil, fmt.Errorf("invalid lockfile: missing port or password")
	}
	if lf.Protocol == "" {
		lf.Protocol = "https"
	}
	return lf, nil
}

func (l Lockfile) BaseURL() string {
	return fmt.Sprintf("%s://127.0.0.1:%s", l.Protocol, l.Port)
}
