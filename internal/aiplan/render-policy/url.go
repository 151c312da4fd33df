package policy

import (
	"net/netip"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ClassifyURL возвращает raw без изменений, если адрес можно вставить в разметку, иначе URLPlaceholder.
//
// Проверка строковая: имя хоста, которое указывает на внутренний адрес только после DNS-резолва,
// здесь не обнаруживается. Загрузку таких адресов при рендере блокирует песочница.
func (p *Policy) ClassifyURL(raw string) string {
	if p.SafeURL(raw) {
		return raw
	}
	return URLPlaceholder
}

// SafeURL сообщает, допустим ли адрес для вставки в href или src.
func (p *Policy) SafeURL(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if !slices.Contains(p.AllowedSchemes, strings.ToLower(u.Scheme)) {
		return false
	}

	// Адреса с userinfo (user@host) не допускаются.
	if u.User != nil {
		return false
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return false
	}

	if slices.Contains(p.DeniedHosts, host) {
		return false
	}
	for _, suffix := range p.DeniedHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return false
		}
	}

	addr, literal := hostAddr(host)
	if !literal {
		return true
	}
	if !addr.IsValid() {
		return false
	}
	return !p.deniedAddr(addr)
}

func (p *Policy) deniedAddr(addr netip.Addr) bool {
	addr = addr.Unmap().WithZone("")
	for _, prefix := range p.DeniedPrefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// hostAddr разбирает хост, который браузер считает литералом IP.
// literal == true и невалидный addr означают литерал, который не удалось разобрать.
//
// Для IPv4 поддерживаются те же формы, что понимает браузер: 2130706433, 0x7f.1, 0177.0.0.1.
func hostAddr(host string) (addr netip.Addr, literal bool) {
	if strings.Contains(host, ":") {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return netip.Addr{}, true
		}
		return addr, true
	}

	parts := strings.Split(host, ".")
	if !isNumberPart(parts[len(parts)-1]) {
		return netip.Addr{}, false
	}
	if len(parts) > 4 {
		return netip.Addr{}, true
	}

	numbers := make([]uint64, len(parts))
	for i, part := range parts {
		n, ok := parseIPv4Part(part)
		if !ok {
			return netip.Addr{}, true
		}
		if i < len(parts)-1 && n > 255 {
			return netip.Addr{}, true
		}
		numbers[i] = n
	}

	last := numbers[len(numbers)-1]
	if last >= 1<<(8*(5-len(numbers))) {
		return netip.Addr{}, true
	}

	ip := last
	for i, n := range numbers[:len(numbers)-1] {
		ip += n << (8 * (3 - i))
	}

	return netip.AddrFrom4([4]byte{byte(ip >> 24), byte(ip >> 16), byte(ip >> 8), byte(ip)}), true
}

// isNumberPart повторяет проверку браузера "хост заканчивается числом".
func isNumberPart(part string) bool {
	if part == "" {
		return false
	}
	if strings.Trim(part, "0123456789") == "" {
		return true
	}
	if len(part) >= 2 && (part[:2] == "0x" || part[:2] == "0X") {
		return strings.Trim(part[2:], "0123456789abcdefABCDEF") == ""
	}
	return false
}

func parseIPv4Part(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}

	base := 10
	switch {
	case len(part) >= 2 && (part[:2] == "0x" || part[:2] == "0X"):
		base = 16
		part = part[2:]
		if part == "" {
			return 0, true
		}
	case len(part) > 1 && part[0] == '0':
		base = 8
		part = part[1:]
	}

	n, err := strconv.ParseUint(part, base, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
