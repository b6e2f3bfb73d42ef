package httpserver

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// rfc3339Milli is like time.RFC3339Nano, but with millisecond precision
const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

// Record is one served request as archived in the access log.
type Record struct {
	Id          string `json:"id" db:"id"`
	RequestLine string `json:"request_line" db:"request_line"`
	Status      string `json:"status" db:"status"`
	BodySize    int64  `json:"body_size" db:"body_size"`
	RemoteAddr  string `json:"remote_addr" db:"remote_addr"`
	ServedAt    string `json:"served_at" db:"served_at"`
}

func (r *Record) ServedTime() time.Time {
	t, err := time.Parse(rfc3339Milli, r.ServedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Marshal encodes the record for the archive's payload column.
func (r *Record) Marshal() ([]byte, error) {
	return msgpack.Marshal(r)
}

// UnmarshalRecord decodes a record from its payload-column form.
func UnmarshalRecord(raw []byte) (*Record, error) {
	r := &Record{}
	if err := msgpack.Unmarshal(raw, r); err != nil {
		return nil, err
	}
	return r, nil
}
