package molit

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// successCodes are the result codes the legacy and current services use for success
var successCodes = map[string]bool{"00": true, "000": true}

// envelope is the common <response> document of both services
type envelope struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []item `xml:"item"`
		} `xml:"items"`
		NumOfRows  int `xml:"numOfRows"`
		PageNo     int `xml:"pageNo"`
		TotalCount int `xml:"totalCount"`
	} `xml:"body"`
}

// item captures every child element of an <item> regardless of its tag
type item struct {
	Fields []field `xml:",any"`
}

type field struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (it item) record() transaction.RawRecord {
	rec := make(transaction.RawRecord, len(it.Fields))
	for _, f := range it.Fields {
		rec[f.XMLName.Local] = strings.TrimSpace(f.Value)
	}
	return rec
}

// decodeEnvelope parses a response and checks its result code.
// A response with a missing header code is accepted when it has a body.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: malformed xml: %v", providers.ErrUpstream, err)
	}

	code := strings.TrimSpace(env.Header.ResultCode)
	if code != "" && !successCodes[code] {
		return nil, fmt.Errorf("%w %s: %s", ErrAPIResult, code, strings.TrimSpace(env.Header.ResultMsg))
	}

	return &env, nil
}

// records returns the items of env as raw records in document order
func (e *envelope) records() []transaction.RawRecord {
	out := make([]transaction.RawRecord, 0, len(e.Body.Items.Item))
	for _, it := range e.Body.Items.Item {
		out = append(out, it.record())
	}
	return out
}
