// Copyright (c) Blue (Lukas Rieger) <https://bluecolored.de>
// SPDX-License-Identifier: MIT

package coder

import (
	"bytes"
	"io"

	"github.com/BlueMap-Minecraft/BlueNBT/internal/errors"
)

// logReader wraps the reader's byte source and, while logging is active,
// duplicates every byte read into a buffer. Raw() uses this to capture the
// exact byte sequence of an element while skipping over it.
type logReader struct {
	r       io.Reader
	logging bool
	log     bytes.Buffer
}

func (l *logReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if l.logging && n > 0 {
		l.log.Write(p[:n])
	}
	return n, err
}

func (l *logReader) startLog() {
	l.log.Reset()
	l.logging = true
}

func (l *logReader) stopLog() []byte {
	l.logging = false
	return append([]byte(nil), l.log.Bytes()...)
}

// skip discards exactly n bytes. It reads through the tee so that skipped
// bytes still end up in the log while logging is active.
func (l *logReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, l, n); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.ErrUnexpectedEnd
		}
		return err
	}
	return nil
}
