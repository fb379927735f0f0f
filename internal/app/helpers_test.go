package app

import (
	"os"
	"time"
)

func writeOld(p string) error {
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		return err
	}
	old := time.Now().Add(-time.Hour)
	return os.Chtimes(p, old, old)
}
