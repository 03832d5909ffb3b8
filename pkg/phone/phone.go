// Package phone приводит телефонные номера сотрудников к E.164.
// Номер без кода страны разбирается в регионе по умолчанию из конфигурации.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const DefaultRegion = "CL"

var ErrInvalid = errors.New("неверный формат телефона")

type Normalizer struct {
	region string
}

func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

func (n *Normalizer) Region() string {
	return n.region
}

// Normalize возвращает номер в E.164. Пустой ввод - пустая строка без ошибки.
func (n *Normalizer) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if strings.HasPrefix(raw, "00") {
		raw = "+" + raw[2:]
	}
	num, err := phonenumbers.Parse(raw, n.region)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func (n *Normalizer) Valid(raw string) bool {
	p, err := n.Normalize(raw)
	return err == nil && p != ""
}

// Format - вариант Normalize для патчей: неразобранный номер возвращается как есть.
func (n *Normalizer) Format(raw string) string {
	if p, err := n.Normalize(raw); err == nil {
		return p
	}
	return strings.TrimSpace(raw)
}
