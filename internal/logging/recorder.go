package logging

import "sync"

// Entry is one call captured by a Recorder.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Recorder keeps every log call in memory, tests use it to assert on what
// was reported.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) record(level, msg string, fields []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, Fields: FieldsToMap(fields)})
}

// Entries returns the captured calls at level, or all of them for "".
func (r *Recorder) Entries(level string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []Entry{}
	for _, entry := range r.entries {
		if level == "" || entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (r *Recorder) Debug(msg string, fields ...interface{}) { r.record("DEBUG", msg, fields) }
func (r *Recorder) Info(msg string, fields ...interface{})  { r.record("INFO", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...interface{})  { r.record("WARN", msg, fields) }
func (r *Recorder) Error(msg string, fields ...interface{}) { r.record("ERROR", msg, fields) }
