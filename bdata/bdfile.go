package bdata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"git.thinkinpower.net/cardbin/mod"
)

const (
	binDataFileExt  = ".bd"
	binDataFileName = "bindata" + binDataFileExt
	binDataHeader   = "id,iin_start,iin_end,scheme,brand,type,prepaid,country,bank_name,currency,product,regional_restriction,account_number_type"
	binDataColumns  = 13
	//largest iin range expanded into single prefixes
	maxRangeExpansion = 100000
)

// read returns the complete lines found after seekOffset and the offset just
// past the last complete line. A trailing partial line is left for the next read.
func read(filepath string, seekOffset int64) ([]string, int64, error) {
	var (
		file *os.File
		err  error
	)
	if file, err = os.Open(filepath); err != nil {
		return nil, seekOffset, err
	}
	defer file.Close()
	if _, err = file.Seek(seekOffset, io.SeekStart); err != nil {
		return nil, seekOffset, err
	}

	result := make([]string, 0, 4096)
	reader := bufio.NewReader(file)
	offset := seekOffset
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, seekOffset, err
		}
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		//skip header and blank lines
		if line == "" || strings.HasPrefix(line, "id,") {
			continue
		}
		result = append(result, line)
	}
	return result, offset, nil
}

// parse turns one data line into records keyed by IinStart, expanding
// iin_start..iin_end into one record per prefix.
func parse(value string) ([]mod.BinRecord, error) {
	values := strings.Split(value, ",")
	if len(values) != binDataColumns {
		return nil, errors.Errorf("expect %d columns, got %d", binDataColumns, len(values))
	}
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	var (
		id         int64
		start, end uint64
		err        error
	)
	if id, err = strconv.ParseInt(values[0], 10, 64); err != nil {
		return nil, errors.Wrapf(err, "invalid id %q", values[0])
	}
	iinStart, iinEnd := values[1], values[2]
	if !isDigits(iinStart) {
		return nil, errors.Errorf("invalid iin_start %q", iinStart)
	}
	if start, err = strconv.ParseUint(iinStart, 10, 64); err != nil {
		return nil, errors.Wrapf(err, "invalid iin_start %q", iinStart)
	}
	end = start
	if iinEnd != "" && iinEnd != iinStart {
		if !isDigits(iinEnd) || len(iinEnd) != len(iinStart) {
			return nil, errors.Errorf("invalid iin_end %q for iin_start %q", iinEnd, iinStart)
		}
		if end, err = strconv.ParseUint(iinEnd, 10, 64); err != nil {
			return nil, errors.Wrapf(err, "invalid iin_end %q", iinEnd)
		}
		if end < start {
			return nil, errors.Errorf("iin_end %s before iin_start %s", iinEnd, iinStart)
		}
		if end-start+1 > maxRangeExpansion {
			return nil, errors.Errorf("iin range %s-%s too large", iinStart, iinEnd)
		}
	}

	base := mod.BinRecord{
		Id:      id,
		Prepaid: values[6],
		BaseBinData: mod.BaseBinData{
			Schema:              values[3],
			Brand:               values[4],
			CardType:            values[5],
			Country:             values[7],
			BankName:            values[8],
			Currency:            values[9],
			Product:             values[10],
			RegionalRestriction: values[11],
			AccountNumberType:   values[12],
		},
	}
	result := make([]mod.BinRecord, 0, end-start+1)
	for current := start; ; current++ {
		record := base
		record.IinStart = fmt.Sprintf("%0*d", len(iinStart), current)
		record.IinEnd = record.IinStart
		result = append(result, record)
		if current == end {
			break
		}
	}
	return result, nil
}

// format is the inverse of parse for a single-prefix record.
func format(record mod.BinRecord) string {
	clean := func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, ",", " "), "\n", " ")
	}
	return strings.Join([]string{
		strconv.FormatInt(record.Id, 10),
		record.IinStart,
		record.IinEnd,
		clean(record.Schema),
		clean(record.Brand),
		clean(record.CardType),
		clean(record.Prepaid),
		clean(record.Country),
		clean(record.BankName),
		clean(record.Currency),
		clean(record.Product),
		clean(record.RegionalRestriction),
		clean(record.AccountNumberType)}, ",")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
