package content

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// The live window opens shortly before the scheduled start (so attendees
// can join early) and closes well after it.
const (
	liveOpenBefore = 5 * time.Minute
	liveOpenAfter  = 2 * time.Hour

	sessionTokenBytes = 20
	passcodeBytes     = 8
)

// IsActiveAt reports whether the session is active at the given instant:
// scheduledAt-5min <= now <= scheduledAt+2h, boundaries included.
// It recomputes on every call; nothing is cached.
func (ls LiveSession) IsActiveAt(now time.Time) bool {
	opens := ls.ScheduledAt.Add(-liveOpenBefore)
	closes := ls.ScheduledAt.Add(liveOpenAfter)
	return !now.Before(opens) && !now.After(closes)
}

// CheckPasscode compares a cleartext passcode against the stored hash.
func (ls LiveSession) CheckPasscode(passcode string) error {
	if err := bcrypt.CompareHashAndPassword(ls.PasscodeHash, []byte(passcode)); err != nil {
		return ErrBadPasscode
	}
	return nil
}

// newLiveSession builds a session with a fresh token embedded in both URLs
// and a one-time passcode. Tokens come from a CSPRNG.
func newLiveSession(baseURL string, scheduledAt time.Time) (LiveSession, string, error) {
	token, err := randomToken(sessionTokenBytes)
	if err != nil {
		return LiveSession{}, "", err
	}
	passcode, hash, err := newPasscode()
	if err != nil {
		return LiveSession{}, "", err
	}
	ls := LiveSession{
		SessionURL:   fmt.Sprintf("%s/live/%s", baseURL, token),
		EmbedURL:     fmt.Sprintf("%s/live/%s/embed", baseURL, token),
		ScheduledAt:  scheduledAt,
		PasscodeHash: hash,
	}
	return ls, passcode, nil
}

// newPasscode generates a passcode and its bcrypt hash. The cleartext is
// only ever returned to the creating caller.
func newPasscode() (string, []byte, error) {
	passcode, err := randomToken(passcodeBytes)
	if err != nil {
		return "", nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	return passcode, hash, nil
}

// randomToken returns a URL-safe base32 token read from crypto/rand.
func randomToken(nbytes int) (string, error) {
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
