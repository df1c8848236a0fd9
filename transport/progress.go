package transport

import "io"

type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{
		reader:   r,
		total:    total,
		last:     -1,
		progress: progress,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	p.read += int64(n)
	p.report(err == io.EOF)
	return n, err
}

func (p *progressReader) report(done bool) {
	percent := 100
	if !done && p.total > 0 {
		percent = int(p.read * 100 / p.total)
		if percent > 100 {
			percent = 100
		}
	}
	if percent != p.last {
		p.last = percent
		p.progress(percent)
	}
}
