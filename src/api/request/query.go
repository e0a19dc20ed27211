package request

import "strconv"

func parseLimit(limit string) int {
	parsed, err := strconv.Atoi(limit)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

func parseOffset(offset string) int {
	parsed, err := strconv.Atoi(offset)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
