package handler

import (
	"errors"
	"io"
)

// errBodyTooLarge возвращается при чтении тела сверх лимита
var errBodyTooLarge = errors.New("request body too large")

// limitedBody ограничивает тело запроса и запоминает факт превышения лимита.
// Парсер multipart может заменить исходную ошибку своей, поэтому решение о 413
// принимается по флагу, а не по тексту ошибки.
type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
	exceeded  bool
}

func newLimitedBody(rc io.ReadCloser, limit int64) *limitedBody {
	return &limitedBody{rc: rc, remaining: limit}
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.exceeded {
		return 0, errBodyTooLarge
	}
	if len(p) == 0 {
		return 0, nil
	}
	// читаем на байт больше остатка, чтобы отличить ровно лимит от превышения
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.rc.Read(p)
	if int64(n) <= b.remaining {
		b.remaining -= int64(n)
		return n, err
	}
	n = int(b.remaining)
	b.remaining = 0
	b.exceeded = true
	return n, errBodyTooLarge
}

func (b *limitedBody) Close() error {
	return b.rc.Close()
}

// Exceeded сообщает, было ли превышено ограничение. Безопасен для nil.
func (b *limitedBody) Exceeded() bool {
	return b != nil && b.exceeded
}
