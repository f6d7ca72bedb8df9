package pgadapt

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

type clientEncoding struct {
	name     string
	encoding encoding.Encoding
}

// clientEncodings maps normalized PostgreSQL client_encoding names and aliases to codecs. SQL_ASCII performs no
// conversion, which is also what the server does.
var clientEncodings = map[string]clientEncoding{
	"UTF8":     {"UTF8", unicode.UTF8},
	"UNICODE":  {"UTF8", unicode.UTF8},
	"SQLASCII": {"SQL_ASCII", encoding.Nop},
	"LATIN1":   {"LATIN1", charmap.ISO8859_1},
	"LATIN2":   {"LATIN2", charmap.ISO8859_2},
	"LATIN3":   {"LATIN3", charmap.ISO8859_3},
	"LATIN4":   {"LATIN4", charmap.ISO8859_4},
	"LATIN5":   {"LATIN5", charmap.ISO8859_9},
	"LATIN6":   {"LATIN6", charmap.ISO8859_10},
	"LATIN7":   {"LATIN7", charmap.ISO8859_13},
	"LATIN8":   {"LATIN8", charmap.ISO8859_14},
	"LATIN9":   {"LATIN9", charmap.ISO8859_15},
	"LATIN10":  {"LATIN10", charmap.ISO8859_16},
	"ISO88591": {"LATIN1", charmap.ISO8859_1},
	"ISO88595": {"ISO_8859_5", charmap.ISO8859_5},
	"ISO88596": {"ISO_8859_6", charmap.ISO8859_6},
	"ISO88597": {"ISO_8859_7", charmap.ISO8859_7},
	"ISO88598": {"ISO_8859_8", charmap.ISO8859_8},
	"WIN866":   {"WIN866", charmap.CodePage866},
	"ALT":      {"WIN866", charmap.CodePage866},
	"WIN874":   {"WIN874", charmap.Windows874},
	"WIN1250":  {"WIN1250", charmap.Windows1250},
	"WIN1251":  {"WIN1251", charmap.Windows1251},
	"WIN":      {"WIN1251", charmap.Windows1251},
	"WIN1252":  {"WIN1252", charmap.Windows1252},
	"WIN1253":  {"WIN1253", charmap.Windows1253},
	"WIN1254":  {"WIN1254", charmap.Windows1254},
	"WIN1255":  {"WIN1255", charmap.Windows1255},
	"WIN1256":  {"WIN1256", charmap.Windows1256},
	"WIN1257":  {"WIN1257", charmap.Windows1257},
	"WIN1258":  {"WIN1258", charmap.Windows1258},
	"KOI8R":    {"KOI8R", charmap.KOI8R},
	"KOI8":     {"KOI8R", charmap.KOI8R},
	"KOI8U":    {"KOI8U", charmap.KOI8U},
	"EUCJP":    {"EUC_JP", japanese.EUCJP},
	"SJIS":     {"SJIS", japanese.ShiftJIS},
	"SHIFTJIS": {"SJIS", japanese.ShiftJIS},
	"EUCKR":    {"EUC_KR", korean.EUCKR},
	"BIG5":     {"BIG5", traditionalchinese.Big5},
	"GBK":      {"GBK", simplifiedchinese.GBK},
	"EUCCN":    {"EUC_CN", simplifiedchinese.GBK},
	"GB18030":  {"GB18030", simplifiedchinese.GB18030},
}

func encodingKey(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(name)))
}

// EncodingForName returns the codec for a PostgreSQL client_encoding name such as "UTF8", "LATIN1" or "WIN1251".
// Names are matched case-insensitively and ignoring '-' and '_'.
func EncodingForName(name string) (encoding.Encoding, error) {
	ce, ok := clientEncodings[encodingKey(name)]
	if !ok {
		return nil, &ConfigError{Op: "client encoding", Msg: "unsupported client_encoding " + `"` + name + `"`}
	}
	return ce.encoding, nil
}

func normalizeEncodingName(name string) string {
	if ce, ok := clientEncodings[encodingKey(name)]; ok {
		return ce.name
	}
	return strings.ToUpper(name)
}
