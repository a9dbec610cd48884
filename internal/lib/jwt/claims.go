// Package jwt реализует генерацию и разбор JWT токенов персонала
// с пользовательскими claim полями.
//
// Maker определяет интерфейс создания и проверки токенов с username и ролью.
// MakerImpl — конкретная реализация с секретным ключом и сроком жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и разбора JWT токенов.
type Maker interface {
	// GenerateToken создаёт токен с указанными username и ролью.
	GenerateToken(username, role string) (string, error)
	// ParseToken возвращает *CustomClaims с username и ролью.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
