// Package channel выбирает канал связи с сотрудником по порядку, заданному компанией.
package channel

import (
	"fmt"
	"strings"

	apperrors "staffhub/pkg/errors"
)

type Channel string

const (
	WhatsApp Channel = "whatsapp"
	Telegram Channel = "telegram"
	SMS      Channel = "sms"
	Email    Channel = "email"
)

// DefaultOrder используется, когда ни один канал из порядка компании не подошёл.
var DefaultOrder = []Channel{WhatsApp, Telegram, SMS, Email}

// DefaultChannel возвращается, если у сотрудника нет ни одного пригодного контакта.
const DefaultChannel = Email

var known = map[Channel]bool{WhatsApp: true, Telegram: true, SMS: true, Email: true}

func (c Channel) Valid() bool { return known[c] }

func (c Channel) String() string { return string(c) }

// Parse принимает имя канала без учёта регистра.
func Parse(name string) (Channel, error) {
	ch := Channel(strings.ToLower(strings.TrimSpace(name)))
	if !ch.Valid() {
		return "", apperrors.NewValidationError("неизвестный канал связи: %q", name)
	}
	return ch, nil
}

// ParseOrder разбирает порядок каналов, повторы отбрасываются.
func ParseOrder(names []string) ([]Channel, error) {
	order := make([]Channel, 0, len(names))
	seen := make(map[Channel]bool, len(names))
	for _, name := range names {
		ch, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		order = append(order, ch)
	}
	return order, nil
}

func Strings(order []Channel) []string {
	out := make([]string, len(order))
	for i, ch := range order {
		out[i] = string(ch)
	}
	return out
}

// Contact - контактные данные сотрудника, значимые для выбора канала.
type Contact struct {
	Phone           string
	TelegramHandle  string
	Email           string
	EmailSubscribed bool
}

// Handle возвращает ник в Telegram без ведущего "@".
func (c Contact) Handle() string {
	return strings.TrimPrefix(strings.TrimSpace(c.TelegramHandle), "@")
}

// Usable сообщает, есть ли у сотрудника контакт для канала.
func Usable(ch Channel, c Contact) bool {
	switch ch {
	case WhatsApp, SMS:
		return strings.TrimSpace(c.Phone) != ""
	case Telegram:
		return c.Handle() != ""
	case Email:
		return c.EmailSubscribed && strings.TrimSpace(c.Email) != ""
	}
	return false
}

// Address - куда отправлять сообщение по выбранному каналу.
func Address(ch Channel, c Contact) string {
	switch ch {
	case WhatsApp, SMS:
		return strings.TrimSpace(c.Phone)
	case Telegram:
		if h := c.Handle(); h != "" {
			return "@" + h
		}
	case Email:
		return strings.TrimSpace(c.Email)
	}
	return ""
}

type Selection struct {
	Channel  Channel `json:"channel"`
	Address  string  `json:"address"`
	Fallback bool    `json:"fallback"`
	Reason   string  `json:"reason"`
}

// Select проходит по порядку компании, затем по DefaultOrder и берёт первый
// канал, для которого у сотрудника есть контакт. Если не подошёл ни один,
// возвращается DefaultChannel с признаком Fallback.
func Select(order []Channel, c Contact) Selection {
	for _, ch := range order {
		if Usable(ch, c) {
			return Selection{Channel: ch, Address: Address(ch, c), Reason: "company_order"}
		}
	}
	for _, ch := range DefaultOrder {
		if Usable(ch, c) {
			return Selection{Channel: ch, Address: Address(ch, c), Reason: "default_order"}
		}
	}
	return Selection{
		Channel:  DefaultChannel,
		Address:  strings.TrimSpace(c.Email),
		Fallback: true,
		Reason:   fmt.Sprintf("no usable contact, falling back to %s", DefaultChannel),
	}
}
