package importer

import (
	"fmt"
	"io"

	"github.com/chapelhq/steward/internal/encoding"
)

type Service struct {
	bankCSV Importer
}

func NewService() *Service {
	return &Service{
		bankCSV: newBankCSV(),
	}
}

// Import decodes the upload to UTF-8 and parses it with the importer for
// the given format.
func (s *Service) Import(format Format, r io.Reader) ([]Row, error) {
	utf8Reader, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}

	switch format {
	case FormatBankCSV:
		return s.bankCSV.Parse(utf8Reader)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
