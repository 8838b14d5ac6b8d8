package ncio

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Format is the on-disk container of a dataset.
type Format int

const (
	FormatUnknown Format = iota
	FormatClassic
	FormatOffset64
	FormatCDF5
	FormatNetCDF4
)

func (f Format) String() string {
	switch f {
	case FormatClassic:
		return "NETCDF3_CLASSIC"
	case FormatOffset64:
		return "NETCDF3_64BIT_OFFSET"
	case FormatCDF5:
		return "NETCDF3_64BIT_DATA"
	case FormatNetCDF4:
		return "NETCDF4"
	default:
		return "unknown"
	}
}

var hdf5Magic = []byte("\x89HDF\r\n\x1a\n")

// DetectFormat reads the magic number at the start of the file.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()
	magic := make([]byte, len(hdf5Magic))
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("read magic of %s: %w", path, err)
	}
	return sniff(magic[:n]), nil
}

func sniff(magic []byte) Format {
	switch {
	case bytes.HasPrefix(magic, hdf5Magic):
		return FormatNetCDF4
	case bytes.HasPrefix(magic, []byte("CDF\x01")):
		return FormatClassic
	case bytes.HasPrefix(magic, []byte("CDF\x02")):
		return FormatOffset64
	case bytes.HasPrefix(magic, []byte("CDF\x05")):
		return FormatCDF5
	default:
		return FormatUnknown
	}
}

// OutputFormat picks the container of the output: NetCDF-4 when compression
// is requested, otherwise the input's format, or 64-bit offset classic when
// the input's is unknown.
func OutputFormat(in Format, compress bool) Format {
	switch {
	case compress:
		return FormatNetCDF4
	case in == FormatUnknown:
		return FormatOffset64
	default:
		return in
	}
}
