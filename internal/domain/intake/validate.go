package intake

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldErrors maps a field name to a human-readable message. An empty map
// means the record can be committed.
type FieldErrors map[string]string

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

// ValidationError is returned when a submitted record fails Validate.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid patient: %s", e.Fields.Error())
}

// Validate checks every required field of p and reports all failures at
// once. It never mutates p.
func Validate(p Patient) FieldErrors {
	errs := FieldErrors{}
	if p.Nama == "" {
		errs[FieldNama] = "Nama wajib diisi"
	}
	if p.NIK == "" || utf8.RuneCountInString(p.NIK) != NIKLength {
		errs[FieldNIK] = "NIK harus 16 digit"
	}
	if p.Diagnosa == "" {
		errs[FieldDiagnosa] = "Diagnosa wajib diisi"
	}
	if p.TanggalMasuk == "" {
		errs[FieldTanggalMasuk] = "Tanggal masuk wajib diisi"
	}
	if p.Dokter == "" {
		errs[FieldDokter] = "Dokter wajib diisi"
	}
	if p.Ruangan == "" {
		errs[FieldRuangan] = "Ruangan wajib diisi"
	}
	return errs
}

// NIKProgress renders the "n/16 karakter" counter shown under the NIK input.
// It returns "" for an empty value.
func NIKProgress(nik string) string {
	n := utf8.RuneCountInString(nik)
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d karakter", n, NIKLength)
}
