package util

const DefaultLimit = 100

func Calculate(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return skip, limit
}
