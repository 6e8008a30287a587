package status

import (
	"regexp"
	"strconv"
)

func extractServer(text string) (ServerStatus, error) {
	var (
		out ServerStatus
		err error
	)

	if out.Hostname, err = firstMatch(hostnameRe, text, FieldHostname); err != nil {
		return ServerStatus{}, err
	}
	if out.Version, err = firstMatch(versionRe, text, FieldVersion); err != nil {
		return ServerStatus{}, err
	}
	if out.Address, err = extractAddress(text); err != nil {
		return ServerStatus{}, err
	}
	if out.Map, err = firstMatch(mapRe, text, FieldMap); err != nil {
		return ServerStatus{}, err
	}
	if out.PlayerCount, err = firstInt(playerCountRe, text, FieldPlayerCount); err != nil {
		return ServerStatus{}, err
	}
	if out.MaxPlayerCount, err = firstInt(maxPlayerCountRe, text, FieldMaxPlayerCount); err != nil {
		return ServerStatus{}, err
	}
	return out, nil
}

func extractAddress(text string) (Address, error) {
	host, err := firstMatch(addressHostRe, text, FieldAddressHost)
	if err != nil {
		return Address{}, err
	}
	rawPort, err := firstMatch(addressPortRe, text, FieldAddressPort)
	if err != nil {
		return Address{}, err
	}
	port, err := strconv.ParseUint(rawPort, 10, 16)
	if err != nil {
		return Address{}, &InvalidFieldError{Field: FieldAddressPort, Value: rawPort, Err: err}
	}
	return Address{Host: host, Port: uint16(port)}, nil
}

// firstMatch returns the first capture of re in text. Later matches are ignored.
func firstMatch(re *regexp.Regexp, text string, field Field) (string, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", &MissingFieldError{Field: field, Line: -1}
	}
	return m[1], nil
}

func firstInt(re *regexp.Regexp, text string, field Field) (int, error) {
	raw, err := firstMatch(re, text, field)
	if err != nil {
		return 0, err
	}
	return atoi(raw, field)
}

func atoi(raw string, field Field) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InvalidFieldError{Field: field, Value: raw, Err: err}
	}
	return n, nil
}
