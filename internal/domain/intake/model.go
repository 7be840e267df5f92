package intake

// Patient is an admitted patient on the intake roster. Field names follow the
// admission form: nama (full name), nik (national identity number),
// diagnosa (admission diagnosis), tanggalMasuk (admission date, YYYY-MM-DD),
// dokter (attending physician) and ruangan (ward).
type Patient struct {
	ID           string `db:"id" json:"id" yaml:"id"`
	Nama         string `db:"nama" json:"nama" yaml:"nama"`
	NIK          string `db:"nik" json:"nik" yaml:"nik"`
	Diagnosa     string `db:"diagnosa" json:"diagnosa" yaml:"diagnosa"`
	TanggalMasuk string `db:"tanggal_masuk" json:"tanggalMasuk" yaml:"tanggalMasuk"`
	Dokter       string `db:"dokter" json:"dokter" yaml:"dokter"`
	Ruangan      string `db:"ruangan" json:"ruangan" yaml:"ruangan"`
}

// Field names as they appear on the wire and in FieldErrors.
const (
	FieldNama         = "nama"
	FieldNIK          = "nik"
	FieldDiagnosa     = "diagnosa"
	FieldTanggalMasuk = "tanggalMasuk"
	FieldDokter       = "dokter"
	FieldRuangan      = "ruangan"
)

// NIKLength is the required length of a national identity number.
const NIKLength = 16

// AdmissionDateLayout is the layout of Patient.TanggalMasuk.
const AdmissionDateLayout = "2006-01-02"
