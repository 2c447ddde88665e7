// Package skill implements the top-words enrichment skill: per-record validation,
// word ranking, and the batch envelope the search service's custom skill calls use.
package skill

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidBody is returned when a batch request cannot be decoded.
var ErrInvalidBody = errors.New("invalid body")

const (
	msgDataRequired     = "'data' field is required."
	msgTextRequired     = "'text' field is required in 'data' object."
	msgProcessingFailed = "Could not complete operation for record."
	validationPrefix    = "Error:"
)

// Outcome classifies how a single record was handled.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeInvalid
	OutcomeFailed
	OutcomeDropped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	case OutcomeDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Message is a single per-record error entry.
type Message struct {
	Message string `json:"message"`
}

// OutputData carries the JSON-encoded top-word array.
type OutputData struct {
	Text string `json:"text"`
}

// OutputRecord is either a success record (Data set) or an error record (Errors set).
// RecordID holds the caller's identifier exactly as it was sent.
type OutputRecord struct {
	RecordID json.RawMessage `json:"recordId"`
	Data     *OutputData     `json:"data,omitempty"`
	Errors   []Message       `json:"errors,omitempty"`
}

// Batch is the response envelope.
type Batch struct {
	Values []OutputRecord `json:"values"`
}

// Summary counts record outcomes within one batch.
type Summary struct {
	Received int
	OK       int
	Invalid  int
	Failed   int
	Dropped  int
}

func (s *Summary) add(outcome Outcome) {
	switch outcome {
	case OutcomeOK:
		s.OK++
	case OutcomeInvalid:
		s.Invalid++
	case OutcomeFailed:
		s.Failed++
	case OutcomeDropped:
		s.Dropped++
	}
}

// Processor applies the top-words transform to records.
type Processor struct {
	stopwords StopwordSet
}

// NewProcessor returns a Processor that filters with the given stopwords.
func NewProcessor(stopwords StopwordSet) *Processor {
	return &Processor{stopwords: stopwords}
}

// DefaultProcessor uses the built-in English stopwords.
func DefaultProcessor() *Processor {
	return NewProcessor(DefaultStopwords())
}

// Transform handles one raw input record. A nil record means the input carried no
// recordId and must be left out of the response entirely.
func (p *Processor) Transform(raw json.RawMessage) (*OutputRecord, Outcome) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, OutcomeDropped
	}

	// TODO: confirm with skill consumers whether a missing recordId should surface as an error record.
	recordID, ok := fields["recordId"]
	if !ok {
		return nil, OutcomeDropped
	}

	text, err := validate(fields)
	if err != nil {
		return errorRecord(recordID, validationPrefix+err.Error()), OutcomeInvalid
	}

	encoded, err := p.topWordsJSON(text)
	if err != nil {
		return errorRecord(recordID, msgProcessingFailed), OutcomeFailed
	}

	return &OutputRecord{RecordID: recordID, Data: &OutputData{Text: encoded}}, OutcomeOK
}

// Compose decodes a {"values": [...]} request body and transforms every record in order.
func (p *Processor) Compose(body []byte) (Batch, Summary, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Batch{}, Summary{}, ErrInvalidBody
	}

	var envelope struct {
		Values *[]json.RawMessage `json:"values"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Batch{}, Summary{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if envelope.Values == nil {
		return Batch{}, Summary{}, fmt.Errorf("%w: values array is required", ErrInvalidBody)
	}

	inputs := *envelope.Values
	batch := Batch{Values: make([]OutputRecord, 0, len(inputs))}
	summary := Summary{Received: len(inputs)}
	for _, raw := range inputs {
		record, outcome := p.Transform(raw)
		summary.add(outcome)
		if record != nil {
			batch.Values = append(batch.Values, *record)
		}
	}
	return batch, summary, nil
}

// Encode renders the batch the way it is returned over HTTP.
func (b Batch) Encode() ([]byte, error) {
	if b.Values == nil {
		b.Values = []OutputRecord{}
	}
	return marshalNoEscape(b)
}

// validate checks the record structure and returns the raw text value.
func validate(fields map[string]json.RawMessage) (json.RawMessage, error) {
	rawData, ok := fields["data"]
	if !ok {
		return nil, errors.New(msgDataRequired)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(rawData, &data); err != nil {
		return nil, errors.New(msgTextRequired)
	}
	text, ok := data["text"]
	if !ok {
		return nil, errors.New(msgTextRequired)
	}
	return text, nil
}

// topWordsJSON is the single failure path for decoding, ranking, and serializing.
func (p *Processor) topWordsJSON(rawText json.RawMessage) (string, error) {
	var text *string
	if err := json.Unmarshal(rawText, &text); err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	if text == nil {
		return "", errors.New("text is null")
	}

	encoded, err := marshalNoEscape(TopWords(*text, p.stopwords))
	if err != nil {
		return "", fmt.Errorf("encode top words: %w", err)
	}
	return string(encoded), nil
}

func errorRecord(recordID json.RawMessage, message string) *OutputRecord {
	return &OutputRecord{RecordID: recordID, Errors: []Message{{Message: message}}}
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
