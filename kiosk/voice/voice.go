// Package voice turns a recorded utterance into a task command.
//
// Recording is owned by the HAL microphone. This package packs the samples
// as WAV, ships them to a speech server, and decodes the server's reply.
package voice

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"kiosk/kiosk/model"
)

// Kind is the command the server recognised.
type Kind string

const (
	KindCreate   Kind = "create"
	KindUpdate   Kind = "update"
	KindComplete Kind = "complete"
	KindDelete   Kind = "delete"
	KindNone     Kind = "none"
)

// Action is the server's decoded reply.
type Action struct {
	Kind           Kind    `json:"action"`
	TaskName       string  `json:"task_name"`
	RecurrenceDays *uint32 `json:"recurrence_days"`
	Message        string  `json:"message"`
	TaskID         *uint32 `json:"task_id"`
}

// Recurrence folds RecurrenceDays into the coarsest whole unit: years of
// 365 days, months of 30, weeks of 7, else days. No value means daily.
func (a Action) Recurrence() (model.RecurrenceType, uint32) {
	if a.RecurrenceDays == nil {
		return model.Daily, 1
	}
	d := *a.RecurrenceDays
	switch {
	case d >= 365 && d%365 == 0:
		return model.Yearly, d / 365
	case d >= 30 && d%30 == 0:
		return model.Monthly, d / 30
	case d >= 7 && d%7 == 0:
		return model.Weekly, d / 7
	default:
		return model.Daily, max(d, 1)
	}
}

// DueInDays is how far from today a created task is first due.
func (a Action) DueInDays() int {
	if a.RecurrenceDays == nil {
		return 1
	}
	return int(*a.RecurrenceDays)
}

// Summary is the line shown on the result screen.
func (a Action) Summary() string {
	if msg := strings.TrimSpace(a.Message); msg != "" {
		return msg
	}
	switch a.Kind {
	case KindCreate:
		return "Add " + a.TaskName + "?"
	case KindUpdate:
		return "Update " + a.TaskName + "?"
	case KindComplete:
		return "Complete " + a.TaskName + "?"
	case KindDelete:
		return "Delete " + a.TaskName + "?"
	default:
		return "Sorry, I didn't catch that"
	}
}

// Client submits a WAV recording and returns the recognised action.
type Client interface {
	Submit(ctx context.Context, wav []byte, taskContext string) (Action, error)
}

// maxContextTasks bounds the task list sent with each request.
const maxContextTasks = 20

// BuildTaskContext describes the current tasks so the server can resolve
// names to ids.
func BuildTaskContext(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "No tasks exist yet."
	}
	var b strings.Builder
	b.WriteString("Current tasks: ")
	for i, t := range tasks {
		if i == maxContextTasks {
			break
		}
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s(id=%d,every %d %s)", t.Name, t.ID, t.RecurrenceValue, t.Recurrence)
	}
	return b.String()
}

// EncodeWAV wraps 16-bit mono PCM samples in a RIFF/WAVE header.
func EncodeWAV(samples []int16, sampleRate uint32) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
		headerSize    = 44
	)
	dataSize := uint32(len(samples) * 2)
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := sampleRate * uint32(blockAlign)

	out := make([]byte, headerSize+int(dataSize))
	le := binary.LittleEndian
	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], 36+dataSize)
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 1)
	le.PutUint16(out[22:], channels)
	le.PutUint32(out[24:], sampleRate)
	le.PutUint32(out[28:], byteRate)
	le.PutUint16(out[32:], blockAlign)
	le.PutUint16(out[34:], bitsPerSample)
	copy(out[36:], "data")
	le.PutUint32(out[40:], dataSize)
	for i, s := range samples {
		le.PutUint16(out[headerSize+2*i:], uint16(s))
	}
	return out
}
