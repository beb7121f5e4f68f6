package directory

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"PrebloomScout/internal/model"
)

// Published symbol directory files.
const (
	NasdaqListedURL = "https://www.nasdaqtrader.com/dynamic/symdir/nasdaqlisted.txt"
	OtherListedURL  = "https://www.nasdaqtrader.com/dynamic/symdir/otherlisted.txt"
)

// otherlisted.txt exchange codes.
var exchangeNames = map[string]string{
	"A": "NYSE American",
	"N": "NYSE",
	"P": "NYSE Arca",
	"Z": "Cboe BZX",
	"V": "IEX",
}

// ParseNasdaqListed parses nasdaqlisted.txt
// (Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares).
func ParseNasdaqListed(r io.Reader) ([]model.ExchangeSecurity, error) {
	return parsePipeFile(r, "Symbol", func(map[string]string) string { return "NASDAQ" })
}

// ParseOtherListed parses otherlisted.txt
// (ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol).
func ParseOtherListed(r io.Reader) ([]model.ExchangeSecurity, error) {
	return parsePipeFile(r, "ACT Symbol", func(cols map[string]string) string {
		if name, ok := exchangeNames[cols["Exchange"]]; ok {
			return name
		}
		return cols["Exchange"]
	})
}

func parsePipeFile(r io.Reader, symbolCol string, exchange func(map[string]string) string) ([]model.ExchangeSecurity, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	var out []model.ExchangeSecurity
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "File Creation Time") {
			continue
		}
		parts := strings.Split(line, "|")
		if header == nil {
			header = parts
			if indexOf(header, symbolCol) < 0 || indexOf(header, "Security Name") < 0 {
				return nil, fmt.Errorf("symbol file: missing %q or %q column", symbolCol, "Security Name")
			}
			continue
		}
		if len(parts) < len(header) {
			continue
		}
		cols := make(map[string]string, len(header))
		for i, h := range header {
			cols[h] = strings.TrimSpace(parts[i])
		}

		sym := strings.ToUpper(cols[symbolCol])
		if !isAlpha(sym) {
			continue
		}
		name := cols["Security Name"]
		sec := model.ExchangeSecurity{
			Symbol:   sym,
			Name:     name,
			Exchange: exchange(cols),
			Type:     classifyType(name, strings.EqualFold(cols["ETF"], "Y")),
			Active:   !strings.EqualFold(cols["Test Issue"], "Y"),
		}
		out = append(out, sec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symbol file: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("symbol file: no header row")
	}
	return out, nil
}

func indexOf(xs []string, want string) int {
	for i, x := range xs {
		if x == want {
			return i
		}
	}
	return -1
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
