// Package mt202 parses raw SWIFT MT202 message text into structured
// instructions for the settlement ledger.
package mt202

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

var (
	ErrMissingReference = errors.New("mt202: missing transaction reference (:20:)")
	ErrMissingAmount    = errors.New("mt202: missing value date/currency/amount (:32A:)")
	ErrMalformedField   = errors.New("mt202: malformed field")
)

// Parse parses a raw MT202 message into an Instruction. Multiline fields
// (50K, 59, 72) are joined with single spaces; the account line of fields
// 50K and 59 (leading "/") becomes the payer and payee identifiers.
func Parse(raw string) (*domain.Instruction, error) {
	fields := splitFields(raw)

	ref, ok := fields["20"]
	if !ok {
		return nil, ErrMissingReference
	}

	in := &domain.Instruction{
		TransactionReference: strings.TrimSpace(ref),
		RelatedReference:     strings.TrimSpace(fields["21"]),
	}

	f32a, ok := fields["32A"]
	if !ok {
		return nil, ErrMissingAmount
	}
	if err := parseValueDateCurrencyAmount(f32a, in); err != nil {
		return nil, err
	}

	if v, ok := fields["50A"]; ok {
		in.OrderingInstitution = strings.TrimSpace(v)
	} else if v, ok := fields["50K"]; ok {
		in.Payer, in.OrderingInstitution = splitAccountLine(v)
	}

	// 52A (ordering agent BIC) takes over when no ordering customer is present.
	if in.OrderingInstitution == "" {
		in.OrderingInstitution = strings.TrimSpace(fields["52A"])
	}

	if v, ok := fields["57A"]; ok {
		in.BeneficiaryInstitution = strings.TrimSpace(v)
	}

	if v, ok := fields["59"]; ok {
		beneficiary := v
		in.Payee, beneficiary = splitAccountLine(v)
		if in.BeneficiaryInstitution == "" {
			in.BeneficiaryInstitution = beneficiary
		}
	}

	if v, ok := fields["72"]; ok {
		in.SenderToReceiverInfo = joinLines(v)
	}

	return in, nil
}

// splitFields breaks the message into tag/value pairs. Lines not starting
// with ":" continue the previous field.
func splitFields(raw string) map[string]string {
	fields := make(map[string]string)
	currentTag := ""

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			parts := strings.SplitN(line[1:], ":", 2)
			currentTag = parts[0]
			if len(parts) == 2 {
				fields[currentTag] = parts[1]
			} else {
				fields[currentTag] = ""
			}
			continue
		}

		if currentTag != "" {
			fields[currentTag] += "\n" + line
		}
	}

	return fields
}

// parseValueDateCurrencyAmount parses field :32A: into YYMMDD value date,
// ISO currency and an amount with comma as the decimal separator.
func parseValueDateCurrencyAmount(v string, in *domain.Instruction) error {
	v = strings.TrimSpace(v)
	if len(v) < 10 {
		return fmt.Errorf("%w: :32A:%s", ErrMalformedField, v)
	}

	valueDate, err := time.Parse("20060102", "20"+v[:6])
	if err != nil {
		return fmt.Errorf("%w: :32A: value date %q: %v", ErrMalformedField, v[:6], err)
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(v[9:], ",", "."))
	if err != nil {
		return fmt.Errorf("%w: :32A: amount %q: %v", ErrMalformedField, v[9:], err)
	}

	in.ValueDate = valueDate
	in.Currency = v[6:9]
	in.Amount = amount

	return nil
}

// splitAccountLine separates a leading "/account" line from the remaining
// free-text lines of a party field.
func splitAccountLine(v string) (account, rest string) {
	lines := strings.Split(strings.TrimSpace(v), "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "/") {
		return strings.TrimSpace(lines[0]), joinTrimmed(lines[1:])
	}
	return "", joinTrimmed(lines)
}

func joinLines(v string) string {
	return joinTrimmed(strings.Split(strings.TrimSpace(v), "\n"))
}

func joinTrimmed(lines []string) string {
	trimmed := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			trimmed = append(trimmed, l)
		}
	}
	return strings.Join(trimmed, " ")
}
