package feed

import (
	"strings"

	"github.com/jgoulah/pumplog/pkg/models"
)

// MinFields is the number of columns a data line needs: datetime, amount, flag
const MinFields = 3

// tokenState is the tokenizer's position relative to double quotes
type tokenState int

const (
	stateNormal tokenState = iota
	stateInQuotes
)

type charClass int

const (
	classOther charClass = iota
	classQuote
	classComma
)

type action int

const (
	actAppend action = iota
	actEmit
	actSkip
)

type transition struct {
	next tokenState
	act  action
}

var transitions = [2][3]transition{
	stateNormal: {
		classOther: {stateNormal, actAppend},
		classQuote: {stateInQuotes, actSkip},
		classComma: {stateNormal, actEmit},
	},
	stateInQuotes: {
		classOther: {stateInQuotes, actAppend},
		classQuote: {stateNormal, actSkip},
		classComma: {stateInQuotes, actAppend},
	},
}

// classify looks back one byte so a backslash-escaped quote does not toggle state
func classify(line string, i int) charClass {
	switch line[i] {
	case '"':
		if i > 0 && line[i-1] == '\\' {
			return classOther
		}
		return classQuote
	case ',':
		return classComma
	default:
		return classOther
	}
}

// SplitLine tokenizes one physical line into fields. Quote state never
// carries over to the next line, so a quoted field spanning lines is split
// at the line break.
func SplitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	state := stateNormal

	for i := 0; i < len(line); i++ {
		t := transitions[state][classify(line, i)]
		switch t.act {
		case actAppend:
			cur.WriteByte(line[i])
		case actEmit:
			fields = append(fields, cur.String())
			cur.Reset()
		}
		state = t.next
	}

	return append(fields, cur.String())
}

// ParseRecords turns feed text into raw records. The first non-blank line is
// the header and is skipped; blank lines and lines with fewer than MinFields
// fields are dropped without error. Any double quotes left in a field value
// (escaped ones) are stripped.
func ParseRecords(text string) []models.RawRecord {
	var records []models.RawRecord
	headerSeen := false

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := SplitLine(line)
		if len(fields) < MinFields {
			continue
		}

		records = append(records, models.RawRecord{
			Line:     i + 1,
			Datetime: stripQuotes(fields[0]),
			Amount:   stripQuotes(fields[1]),
			Flag:     stripQuotes(fields[2]),
		})
	}

	return records
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "")
}
