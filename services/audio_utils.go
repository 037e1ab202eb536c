package services

import (
	"io"

	"github.com/pkg/errors"
	tcmp3 "github.com/tcolgate/mp3"
)

// MP3Duration đọc hết các frame MP3 và trả về tổng số giây
func MP3Duration(r io.Reader) (float64, error) {
	var (
		dur     float64
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return 0, errors.Wrap(err, "decode mp3 frame")
		}
		dur += frame.Duration().Seconds()
	}

	return dur, nil
}
