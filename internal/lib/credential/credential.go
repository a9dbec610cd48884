// Package credential разбирает отсканированные и введённые вручную
// учётные данные клиента и выдаёт новые PIN-коды при регистрации.
//
// Сканер отдаёт либо JSON вида {"qr_code": ..., "pin": ...}, либо голую
// числовую строку PIN, набранную на клавиатуре. Любая другая форма —
// ошибка ввода, а не ошибка хранилища.
package credential

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// ErrMalformed возвращается, когда полезная нагрузка не является ни JSON
// с полями qr_code/pin, ни числовой строкой PIN.
var ErrMalformed = errors.New("malformed credential payload")

var pinPattern = regexp.MustCompile(`^\d+$`)

// Credential разобранные учётные данные из сканирования.
// Хотя бы одно из полей непусто. Поиск клиента идёт сначала по QRCode,
// затем по PIN.
type Credential struct {
	QRCode string `json:"qr_code"`
	PIN    string `json:"pin"`
}

// Parse разбирает сырое содержимое сканирования или ручного ввода.
func Parse(raw string) (Credential, error) {
	const op = "credential.Parse"

	if pinPattern.MatchString(raw) {
		return Credential{PIN: raw}, nil
	}

	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return Credential{}, fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	if cred.QRCode == "" && cred.PIN == "" {
		return Credential{}, fmt.Errorf("%s: %w", op, ErrMalformed)
	}
	return cred, nil
}

// NewPIN выдаёт случайный четырёхзначный PIN в диапазоне 1000..9999.
// Уникальность среди клиентов обеспечивает вызывающая сторона.
func NewPIN() (string, error) {
	const op = "credential.NewPIN"
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// QRCodeFor возвращает токен QR-кода для PIN. Токен стабилен на всё время
// жизни клиента и печатается в выдаваемом клиенту QR-коде.
func QRCodeFor(pin string) string {
	return "QR-" + pin
}
