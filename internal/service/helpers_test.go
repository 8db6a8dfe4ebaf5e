package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/dto"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type auditRecorderStub struct {
	entries []AuditEntry
}

func (a *auditRecorderStub) Record(_ context.Context, entry AuditEntry) (dto.AuditEntryResponse, error) {
	a.entries = append(a.entries, entry)
	return dto.AuditEntryResponse{}, nil
}

func (a *auditRecorderStub) lastAction() string {
	if len(a.entries) == 0 {
		return ""
	}
	return a.entries[len(a.entries)-1].Action
}
