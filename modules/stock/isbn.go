package stock

import "strings"

// NormalizeIsbn strips separators and upgrades ISBN-10 to ISBN-13.
// Returns ErrInvalidIsbn for anything that fails its checksum.
func NormalizeIsbn(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, raw)

	switch len(cleaned) {
	case 10:
		if !validIsbn10(cleaned) {
			return "", ErrInvalidIsbn
		}
		return upgradeIsbn10(cleaned), nil
	case 13:
		if !validIsbn13(cleaned) {
			return "", ErrInvalidIsbn
		}
		return cleaned, nil
	default:
		return "", ErrInvalidIsbn
	}
}

func validIsbn13(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	return sum%10 == 0
}

func validIsbn10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var digit int
		switch {
		case r >= '0' && r <= '9':
			digit = int(r - '0')
		case (r == 'X' || r == 'x') && i == 9:
			digit = 10
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

func upgradeIsbn10(isbn string) string {
	body := "978" + isbn[:9]
	sum := 0
	for i, r := range body {
		digit := int(r - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}
