// Проверка решений Altcha при входе администратора. Использованные подписи
// запоминаются, повторная отправка того же решения отклоняется.
package koop

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/altcha-org/altcha-lib-go"
	"github.com/prometheus/client_golang/prometheus"
)

var AltchaExpires time.Duration = time.Hour

type CaptchaSignatures struct {
	hmacKey  string
	disabled bool

	signatures map[string]struct{}
	mu         sync.Mutex

	verify               func(payload altcha.Payload) (bool, error)
	badSignaturesCounter prometheus.Counter
}

func NewCaptchaService(hmacKey string, disabled bool, badSignatures prometheus.Counter) *CaptchaSignatures {
	s := &CaptchaSignatures{
		hmacKey:              hmacKey,
		disabled:             disabled,
		signatures:           make(map[string]struct{}),
		badSignaturesCounter: badSignatures,
	}
	s.verify = func(payload altcha.Payload) (bool, error) {
		return altcha.VerifySolution(payload, s.hmacKey, true)
	}
	return s
}

func (c *CaptchaSignatures) Challenge() (altcha.Challenge, error) {
	expires := time.Now().Add(AltchaExpires)
	return altcha.CreateChallenge(altcha.ChallengeOptions{
		HMACKey:   c.hmacKey,
		MaxNumber: 10000,
		Expires:   &expires,
		Params:    url.Values{},
	})
}

// Validate декодирует base64 payload, проверяет решение и запоминает подпись.
func (c *CaptchaSignatures) Validate(payload string) bool {
	if c.disabled {
		return true
	}

	decodedPayload, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		slog.Error("Decode altcha payload", "err", err)
		return false
	}

	var m altcha.Payload
	if err := json.Unmarshal(decodedPayload, &m); err != nil {
		slog.Error("Unmarshal altcha payload", "err", err)
		return false
	}

	verified, err := c.verify(m)
	if err != nil || !verified {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.signatures[m.Signature]; ok {
		if c.badSignaturesCounter != nil {
			c.badSignaturesCounter.Inc()
		}
		return false
	}

	c.signatures[m.Signature] = struct{}{}

	return true
}

// Clear сбрасывает запомненные подписи. Вызывается по расписанию, после AltchaExpires они не нужны.
func (c *CaptchaSignatures) Clear() {
	slog.Info("Clear captchas signatures")
	c.mu.Lock()
	clear(c.signatures)
	c.mu.Unlock()
}
