package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/ehr/roster/internal/config"
	"github.com/ehr/roster/internal/domain/intake"
	"github.com/ehr/roster/pkg/pagination"
)

const (
	msgLoading  = "Memuat data..."
	msgNotFound = "Data tidak ditemukan"
)

// formFields lists the intake form in display order.
var formFields = []struct {
	name  string
	label string
}{
	{intake.FieldNama, "Nama Lengkap"},
	{intake.FieldNIK, "NIK"},
	{intake.FieldDiagnosa, "Diagnosa Masuk"},
	{intake.FieldTanggalMasuk, "Tanggal Masuk (YYYY-MM-DD)"},
	{intake.FieldDokter, "Dokter Penanggung Jawab"},
	{intake.FieldRuangan, "Ruangan"},
}

const helpText = `Perintah:
  search <teks>           cari nama atau NIK (tanpa teks: hapus pencarian)
  sort nama|tanggalMasuk  urutkan; ulangi untuk membalik arah
  page <n>                pindah ke halaman n
  next, prev              halaman berikutnya / sebelumnya
  add                     tambah pasien
  help                    tampilkan bantuan ini
  quit                    keluar`

func runBrowse(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, pool, err := loadRoster(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Service logs go to stderr so they do not interleave with the table.
	logger := newLogger(cfg.Env, os.Stderr).Level(zerolog.WarnLevel)
	svc := intake.NewService(store, logger, nil)

	ctrl := intake.NewController(store, cfg.LoadingDelay)
	defer ctrl.Close()

	return newBrowser(ctrl, svc, in, out).run(ctx)
}

// browser is a line-oriented roster screen. It owns the controller and is
// driven from a single goroutine.
type browser struct {
	ctrl *intake.Controller
	svc  *intake.Service
	in   *bufio.Scanner
	out  io.Writer
}

func newBrowser(ctrl *intake.Controller, svc *intake.Service, in io.Reader, out io.Writer) *browser {
	return &browser{ctrl: ctrl, svc: svc, in: bufio.NewScanner(in), out: out}
}

func (b *browser) run(ctx context.Context) error {
	if b.ctrl.Loading() {
		fmt.Fprintln(b.out, msgLoading)
		select {
		case <-b.ctrl.Ready():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.render()

	for {
		fmt.Fprint(b.out, "> ")
		line, ok := b.readLine()
		if !ok {
			fmt.Fprintln(b.out)
			return b.in.Err()
		}
		quit, err := b.dispatch(ctx, line)
		if err != nil {
			fmt.Fprintln(b.out, err)
		}
		if quit {
			return nil
		}
	}
}

func (b *browser) readLine() (string, bool) {
	if !b.in.Scan() {
		return "", false
	}
	return strings.TrimRight(b.in.Text(), "\r"), true
}

// dispatch runs one command and redraws the list after any state change.
func (b *browser) dispatch(ctx context.Context, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "search":
		b.ctrl.SetSearch(arg)
	case "sort":
		field, err := intake.ParseSortField(arg)
		if err != nil {
			return false, err
		}
		b.ctrl.ToggleSort(field)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("page: %q is not a page number", arg)
		}
		b.ctrl.SetPage(n)
	case "next":
		v := b.ctrl.View()
		b.ctrl.SetPage(pagination.Params{Page: v.Page, Size: intake.PageSize}.NextPage(v.Total))
	case "prev":
		v := b.ctrl.View()
		b.ctrl.SetPage(pagination.Params{Page: v.Page, Size: intake.PageSize}.PreviousPage())
	case "add":
		if err := b.add(ctx); err != nil {
			return false, err
		}
	case "help":
		fmt.Fprintln(b.out, helpText)
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("perintah tidak dikenal %q, ketik help", cmd)
	}

	b.render()
	return false, nil
}

func (b *browser) render() {
	v := b.ctrl.View()

	fmt.Fprintln(b.out, "Daftar Pasien Aktif")
	if v.Search != "" {
		fmt.Fprintf(b.out, "Cari: %s\n", v.Search)
	}
	switch {
	case v.Loading:
		fmt.Fprintln(b.out, msgLoading)
		return
	case v.Total == 0:
		fmt.Fprintln(b.out, msgNotFound)
		return
	}

	tw := tabwriter.NewWriter(b.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Nama%s\tNIK\tDiagnosa\tTanggal Masuk%s\tDokter\tRuangan\n",
		sortMark(v, intake.SortByName), sortMark(v, intake.SortByAdmissionDate))
	for _, p := range v.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.Nama, p.NIK, p.Diagnosa, p.TanggalMasuk, p.Dokter, p.Ruangan)
	}
	tw.Flush()

	if v.TotalPages > 1 {
		fmt.Fprintln(b.out, pageBar(v.Page, v.TotalPages))
	}
}

func sortMark(v intake.View, field intake.SortField) string {
	if v.SortField != field {
		return ""
	}
	if v.Ascending {
		return " ↑"
	}
	return " ↓"
}

// pageBar renders "‹ prev 1 [2] 3 next ›" with the current page bracketed.
func pageBar(page, totalPages int) string {
	var sb strings.Builder
	sb.WriteString("‹ prev")
	for i := 1; i <= totalPages; i++ {
		if i == page {
			fmt.Fprintf(&sb, " [%d]", i)
		} else {
			fmt.Fprintf(&sb, " %d", i)
		}
	}
	sb.WriteString(" next ›")
	return sb.String()
}

// add walks the intake form. After a rejected submission only the failing
// fields are asked again; an empty answer keeps the previous value and
// "batal" abandons the form.
func (b *browser) add(ctx context.Context) error {
	fmt.Fprintln(b.out, "Formulir Pasien Masuk (ketik \"batal\" untuk membatalkan)")

	values := make(map[string]string, len(formFields))
	pending := make([]string, 0, len(formFields))
	labels := make(map[string]string, len(formFields))
	for _, f := range formFields {
		pending = append(pending, f.name)
		labels[f.name] = f.label
	}

	for {
		for _, name := range pending {
			if cur := values[name]; cur != "" {
				fmt.Fprintf(b.out, "%s [%s]: ", labels[name], cur)
			} else {
				fmt.Fprintf(b.out, "%s: ", labels[name])
			}
			line, ok := b.readLine()
			if !ok {
				return errors.New("add: input closed")
			}
			if line == "batal" {
				fmt.Fprintln(b.out, "Dibatalkan")
				return nil
			}
			if line != "" {
				values[name] = line
			}
			if name == intake.FieldNIK {
				if progress := intake.NIKProgress(values[name]); progress != "" {
					fmt.Fprintf(b.out, "  %s\n", progress)
				}
			}
		}

		created, err := b.svc.CreatePatient(ctx, intake.Patient{
			Nama:         values[intake.FieldNama],
			NIK:          values[intake.FieldNIK],
			Diagnosa:     values[intake.FieldDiagnosa],
			TanggalMasuk: values[intake.FieldTanggalMasuk],
			Dokter:       values[intake.FieldDokter],
			Ruangan:      values[intake.FieldRuangan],
		})
		var ve *intake.ValidationError
		if errors.As(err, &ve) {
			pending = pending[:0]
			for _, f := range formFields {
				if msg, ok := ve.Fields[f.name]; ok {
					fmt.Fprintf(b.out, "  %s\n", msg)
					pending = append(pending, f.name)
				}
			}
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(b.out, "Pasien %s disimpan\n", created.Nama)
		return nil
	}
}
