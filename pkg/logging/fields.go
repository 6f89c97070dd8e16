package logging

import (
	"fmt"
	"time"
)

func String(key, value string) Field             { return Field{Key: key, Value: value} }
func Int(key string, value int) Field            { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field          { return Field{Key: key, Value: value} }
func Any(key string, value any) Field            { return Field{Key: key, Value: value} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d.String()} }

// Error records err under "error"; a nil error yields a nil value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Component(name string) Field   { return String("component", name) }
func Operation(op string) Field     { return String("operation", op) }
func RecordType(name string) Field  { return String("record_type", name) }
func TxID(id string) Field          { return String("tx_id", id) }
func Latency(d time.Duration) Field { return Duration("latency", d) }

// Value renders an arbitrary record or index value. Values are formatted
// rather than embedded so that unmarshalable types never break a log line.
func Value(key string, v any) Field {
	if v == nil {
		return Field{Key: key, Value: nil}
	}
	return Field{Key: key, Value: fmt.Sprintf("%v", v)}
}
