package kafka

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrMalformed = errors.New("malformed event record")

func eventToRec(ev domain.Event) (kgo.Record, error) {
	var rec kgo.Record
	value, err := json.Marshal(ev.Fields)
	if err != nil {
		return rec, fmt.Errorf("encode fields of %s: %w", ev.TaskID, err)
	}

	headers := make([]kgo.RecordHeader, 0, 4)
	headers = append(headers, kgo.RecordHeader{Key: domain.HeaderID, Value: []byte(ev.TaskID)})
	headers = append(headers, kgo.RecordHeader{Key: domain.HeaderType, Value: []byte(ev.Type)})
	if ev.Hostname != "" {
		headers = append(headers, kgo.RecordHeader{Key: domain.HeaderHostname, Value: []byte(ev.Hostname)})
	}
	ts := binary.BigEndian.AppendUint64(nil, math.Float64bits(ev.Timestamp))
	headers = append(headers, kgo.RecordHeader{Key: domain.HeaderTimestamp, Value: ts})

	rec.Key = []byte(ev.TaskID)
	rec.Value = value
	rec.Headers = headers
	return rec, nil
}

// recToEvent decodes a record. The task id falls back to the record key.
func recToEvent(rec *kgo.Record) (ev domain.Event, err error) {
	for i := range rec.Headers {
		switch rec.Headers[i].Key {
		case domain.HeaderID:
			ev.TaskID = string(rec.Headers[i].Value)
		case domain.HeaderType:
			ev.Type = string(rec.Headers[i].Value)
		case domain.HeaderHostname:
			ev.Hostname = string(rec.Headers[i].Value)
		case domain.HeaderTimestamp:
			if len(rec.Headers[i].Value) != 8 {
				return ev, fmt.Errorf("%w: timestamp header has %d bytes", ErrMalformed, len(rec.Headers[i].Value))
			}
			ev.Timestamp = math.Float64frombits(binary.BigEndian.Uint64(rec.Headers[i].Value))
		}
	}
	if ev.Type == "" {
		return ev, fmt.Errorf("%w: missing type header", ErrMalformed)
	}
	if ev.TaskID == "" {
		ev.TaskID = string(rec.Key)
	}
	if ev.TaskID == "" {
		return ev, fmt.Errorf("%w: missing task id", ErrMalformed)
	}

	if len(bytes.TrimSpace(rec.Value)) == 0 {
		return ev, nil
	}
	dec := json.NewDecoder(bytes.NewReader(rec.Value))
	dec.UseNumber()
	if err := dec.Decode(&ev.Fields); err != nil {
		return ev, fmt.Errorf("%w: decode fields of %s: %v", ErrMalformed, ev.TaskID, err)
	}
	return ev, nil
}
