// Package upi holds the pure helpers shared by the transaction processor
// and the seeder: transaction id and bank reference generation, UPI address
// validation and the upi:// QR payload format.
package upi

import (
	"errors"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"
)

// Source is the randomness the processor draws from. Seedable in tests.
type Source interface {
	Float64() float64
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// NewSource returns a concurrency-safe Source. Settlement timers fire on
// worker goroutines, so the underlying rand.Rand needs the lock.
func NewSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomString(src Source, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[src.Intn(len(idAlphabet))]
	}
	return string(b)
}

// NewTxnID builds a human-facing transaction id: TXN-<YYYYMMDD>-<6 alnum>.
func NewTxnID(src Source, now time.Time) string {
	return "TXN-" + now.Format("20060102") + "-" + randomString(src, 6)
}

// NewBankRef builds the synthetic settlement reference stored in metadata.
func NewBankRef(src Source) string {
	return "REF" + randomString(src, 10)
}

var TxnIDPattern = regexp.MustCompile(`^TXN-\d{8}-[A-Z0-9]{6}$`)

var addressPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)

// ValidAddress reports whether s looks like a UPI handle (local-part@domain).
func ValidAddress(s string) bool { return addressPattern.MatchString(s) }

// FailureReasons is the closed set of provider-style settlement failures.
var FailureReasons = []string{
	"Insufficient funds",
	"Network timeout",
	"UPI ID not found",
	"Bank server unavailable",
	"Transaction declined by bank",
	"Daily limit exceeded",
	"Invalid UPI PIN",
}

func RandomFailureReason(src Source) string {
	return FailureReasons[src.Intn(len(FailureReasons))]
}

// RandomDelay draws uniformly from [min, max] inclusive.
func RandomDelay(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// ShouldSucceed draws the settlement outcome: draw < rate means success.
func ShouldSucceed(src Source, rate float64) bool {
	return src.Float64() < rate
}

// QRData is the payment intent carried by a upi:// QR code.
type QRData struct {
	UPIID  string   `json:"upi_id"`
	Name   string   `json:"name"`
	Amount *float64 `json:"amount,omitempty"`
}

// QRPayload builds upi://pay?pa=<address>&pn=<name>[&am=<amount>]&cu=INR.
// Amount <= 0 omits the am field.
func QRPayload(upiID, name string, amount float64) string {
	payload := "upi://pay?pa=" + upiID + "&pn=" + url.QueryEscape(name)
	if amount > 0 {
		payload += "&am=" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return payload + "&cu=INR"
}

var ErrBadQRPayload = errors.New("not a upi pay payload")

// ParseQRPayload extracts the payment intent from a upi://pay URI.
func ParseQRPayload(payload string) (QRData, error) {
	u, err := url.Parse(payload)
	if err != nil {
		return QRData{}, ErrBadQRPayload
	}
	if u.Scheme != "upi" || u.Host != "pay" {
		return QRData{}, ErrBadQRPayload
	}
	q := u.Query()
	d := QRData{UPIID: q.Get("pa"), Name: q.Get("pn")}
	if d.UPIID == "" || d.Name == "" {
		return QRData{}, ErrBadQRPayload
	}
	if am := q.Get("am"); am != "" {
		v, err := strconv.ParseFloat(am, 64)
		if err != nil {
			return QRData{}, ErrBadQRPayload
		}
		d.Amount = &v
	}
	return d, nil
}
