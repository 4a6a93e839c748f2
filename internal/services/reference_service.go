package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"univtours/internal/domain/models"
	"univtours/internal/repositories"
	"univtours/internal/utils"
)

const referencePrefix = "UT"

// ReferenceService produces human-legible unique reservation references and
// the import deduplication fingerprint.
type ReferenceService struct {
	Repo repositories.ReservationRepo
	Now  func() time.Time
}

func (s ReferenceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// MakeReference picks the reference for a new reservation: a supplied one is
// respected verbatim (imports), a billet_avion PNR wins next, otherwise a
// reference is synthesized. The result is always run through EnsureUnique.
func (s ReferenceService) MakeReference(typ, supplied, pnr string) (string, error) {
	if ref := strings.TrimSpace(supplied); ref != "" {
		return s.EnsureUnique(ref)
	}

	if typ == models.TypeBilletAvion {
		if p := strings.TrimSpace(pnr); p != "" {
			return s.EnsureUnique(strings.ToUpper(p))
		}
	}

	date := s.now().Format("20060102")
	candidate := fmt.Sprintf("%s-%s-%s-%s", referencePrefix, typeCode(typ), date, randomRef(6))
	return s.EnsureUnique(candidate)
}

// EnsureUnique suffixes -2, -3, ... until the candidate is free. It must run
// on the same querier as the eventual insert; the unique constraint on
// reservations.reference backstops the remaining race window.
func (s ReferenceService) EnsureUnique(candidate string) (string, error) {
	base := strings.TrimSpace(candidate)
	ref := base
	for i := 2; ; i++ {
		exists, err := s.Repo.ExistsByReference(ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
		ref = base + "-" + strconv.Itoa(i)
	}
}

func typeCode(typ string) string {
	switch typ {
	case models.TypeBilletAvion:
		return "AV"
	case models.TypeHotel:
		return "HOT"
	case models.TypeVoiture:
		return "CAR"
	case models.TypeEvenement:
		return "EVT"
	case models.TypeForfait:
		return "PKG"
	case models.TypeAssurance:
		return "ASS"
	default:
		return "RES"
	}
}

const refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Collision probability is handled by EnsureUnique, not by randomness quality.
func randomRef(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = refAlphabet[rand.Intn(len(refAlphabet))]
	}
	return string(b)
}

// ImportFingerprint is the idempotency key for bulk import: a deterministic
// digest over the normalized row identity, so re-running an import never
// duplicates a reservation even when the external reference/PNR is blank or
// reused. When present it takes priority over reference as the upsert key.
func ImportFingerprint(source, date, payer, passenger, depart, arrivee, pnr string, total float64) string {
	norm := func(s string) string {
		return strings.ToLower(utils.NormalizeSpace(s))
	}
	payload := strings.Join([]string{
		norm(source),
		norm(date),
		norm(payer),
		norm(passenger),
		norm(depart),
		norm(arrivee),
		norm(pnr),
		strconv.FormatFloat(total, 'f', 2, 64),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// GenerateFactureNumero returns "FAC-YYYYMMDD-XXXXXX".
func GenerateFactureNumero(now time.Time) string {
	return fmt.Sprintf("FAC-%s-%s", now.Format("20060102"), randomRef(6))
}
