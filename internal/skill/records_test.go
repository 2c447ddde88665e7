package skill

import (
	"encoding/json"
	"errors"
	"testing"
)

func transformString(t *testing.T, raw string) (string, Outcome) {
	t.Helper()
	record, outcome := DefaultProcessor().Transform(json.RawMessage(raw))
	if record == nil {
		return "", outcome
	}
	encoded, err := marshalNoEscape(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(encoded), outcome
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		outcome Outcome
	}{
		{
			name:    "success",
			input:   `{"recordId":"1","data":{"text":"Hello, hello! HELLO."}}`,
			want:    `{"recordId":"1","data":{"text":"[\"hello\"]"}}`,
			outcome: OutcomeOK,
		},
		{
			name:    "missing data",
			input:   `{"recordId":"1"}`,
			want:    `{"recordId":"1","errors":[{"message":"Error:'data' field is required."}]}`,
			outcome: OutcomeInvalid,
		},
		{
			name:    "missing text",
			input:   `{"recordId":"2","data":{"body":"x"}}`,
			want:    `{"recordId":"2","errors":[{"message":"Error:'text' field is required in 'data' object."}]}`,
			outcome: OutcomeInvalid,
		},
		{
			name:    "data not an object",
			input:   `{"recordId":"3","data":"text"}`,
			want:    `{"recordId":"3","errors":[{"message":"Error:'text' field is required in 'data' object."}]}`,
			outcome: OutcomeInvalid,
		},
		{
			name:    "text not a string",
			input:   `{"recordId":"4","data":{"text":42}}`,
			want:    `{"recordId":"4","errors":[{"message":"Could not complete operation for record."}]}`,
			outcome: OutcomeFailed,
		},
		{
			name:    "null text",
			input:   `{"recordId":"5","data":{"text":null}}`,
			want:    `{"recordId":"5","errors":[{"message":"Could not complete operation for record."}]}`,
			outcome: OutcomeFailed,
		},
		{
			name:    "only stopwords",
			input:   `{"recordId":"6","data":{"text":"the and of"}}`,
			want:    `{"recordId":"6","data":{"text":"[]"}}`,
			outcome: OutcomeOK,
		},
		{
			name:    "numeric record id echoed",
			input:   `{"recordId":7,"data":{"text":"search search"}}`,
			want:    `{"recordId":7,"data":{"text":"[\"search\"]"}}`,
			outcome: OutcomeOK,
		},
		{
			name:    "missing record id",
			input:   `{"data":{"text":"x"}}`,
			outcome: OutcomeDropped,
		},
		{
			name:    "record not an object",
			input:   `"just a string"`,
			outcome: OutcomeDropped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := transformString(t, tt.input)
			if outcome != tt.outcome {
				t.Fatalf("outcome = %s, want %s", outcome, tt.outcome)
			}
			if got != tt.want {
				t.Fatalf("record = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTransformDoesNotEscapeHTML(t *testing.T) {
	got, _ := transformString(t, `{"recordId":"1","data":{"text":"<b>bold</b> <b>bold</b>"}}`)
	want := `{"recordId":"1","data":{"text":"[\"<b>bold</b>\"]"}}`
	if got != want {
		t.Fatalf("record = %s, want %s", got, want)
	}
}

func TestComposeKeepsOrderAndDropsRecordsWithoutID(t *testing.T) {
	body := []byte(`{"values":[
		{"recordId":"a","data":{"text":"bb bb aa aa"}},
		{"data":{"text":"dropped"}},
		{"recordId":"b"},
		{"recordId":"c","data":{"text":["not","text"]}}
	]}`)

	batch, summary, err := DefaultProcessor().Compose(body)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	encoded, err := batch.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"values":[` +
		`{"recordId":"a","data":{"text":"[\"bb\",\"aa\"]"}},` +
		`{"recordId":"b","errors":[{"message":"Error:'data' field is required."}]},` +
		`{"recordId":"c","errors":[{"message":"Could not complete operation for record."}]}` +
		`]}`
	if string(encoded) != want {
		t.Fatalf("batch = %s\nwant  %s", encoded, want)
	}

	if summary != (Summary{Received: 4, OK: 1, Invalid: 1, Failed: 1, Dropped: 1}) {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestComposeEmptyValues(t *testing.T) {
	batch, _, err := DefaultProcessor().Compose([]byte(`{"values":[]}`))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	encoded, err := batch.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(encoded) != `{"values":[]}` {
		t.Fatalf("expected empty values array, got %s", encoded)
	}
}

func TestComposeRejectsInvalidBodies(t *testing.T) {
	bodies := []string{
		"",
		"   ",
		"not json",
		`{"values":`,
		`null`,
		`{}`,
		`{"values":null}`,
		`{"values":"nope"}`,
		`[1,2,3]`,
	}

	for _, body := range bodies {
		_, _, err := DefaultProcessor().Compose([]byte(body))
		if !errors.Is(err, ErrInvalidBody) {
			t.Errorf("Compose(%q) error = %v, want ErrInvalidBody", body, err)
		}
	}
}
