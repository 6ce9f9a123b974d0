package greyfilter

import (
	"fmt"
	"io"
	"os"
	"time"
)

const (
	fileDecisionJson string = `{"type":"decision","id":"%s","occurred_at":"%s","session":"%s","token":"%s","fingerprint":"%s","outcome":"%s","code":%d,"consulted":%t,"failure":%q}
`
)

type HookFile struct {
	file io.Writer
}

func (h *HookFile) Name() string {
	return "file"
}

func (h *HookFile) writer() (io.Writer, error) {
	if h.file != nil {
		return h.file, nil
	}

	path := os.Getenv("FILE_PATH")
	if len(path) == 0 {
		return nil, fmt.Errorf("missing path for file, please set `FILE_PATH`")
	}

	var err error
	h.file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile error: %w", err)
	}

	return h.file, nil
}

func (h *HookFile) AfterInit() {
}

func (h *HookFile) AfterDecision(d *AfterDecisionData) {
	writer, err := h.writer()
	if err != nil {
		hookLog(h).Error(err)
		return
	}

	_, err = fmt.Fprintf(writer, fileDecisionJson,
		d.ID,
		d.OccurredAt.Format(time.RFC3339),
		d.Session,
		d.Token,
		d.Fingerprint,
		d.Outcome,
		d.Code,
		d.Consulted,
		d.failure(),
	)
	if err != nil {
		hookLog(h).WithError(err).Error("file append error")
	}
}
