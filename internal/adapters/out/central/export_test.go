package central

var ParseRetryAfter = parseRetryAfter
