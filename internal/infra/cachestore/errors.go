package cachestore

import "errors"

var (
	ErrRedisConnection  = errors.New("redis connection error")
	ErrInvalidEntryData = errors.New("invalid cache entry data")
)
