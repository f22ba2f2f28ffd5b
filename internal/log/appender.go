package log

import "io"

// MultiWriter fans log output to every appender. A failing appender does
// not stop the others; the last error is returned.
type MultiWriter struct {
	writers []io.Writer
	closers []io.Closer
}

func NewMultiWriter() *MultiWriter {
	return &MultiWriter{}
}

func (m *MultiWriter) Write(p []byte) (n int, err error) {
	for _, w := range m.writers {
		if _, e := w.Write(p); e != nil {
			err = e
		}
	}
	return len(p), err
}

// Add appends a writer the MultiWriter does not own, such as stdout.
func (m *MultiWriter) Add(writer io.Writer) *MultiWriter {
	m.writers = append(m.writers, writer)
	return m
}

// AddOwned appends a writer that Close will close.
func (m *MultiWriter) AddOwned(writer io.WriteCloser) *MultiWriter {
	m.writers = append(m.writers, writer)
	m.closers = append(m.closers, writer)
	return m
}

// Close closes the owned appenders.
func (m *MultiWriter) Close() error {
	var err error
	for _, c := range m.closers {
		if e := c.Close(); e != nil {
			err = e
		}
	}
	m.closers = nil
	return err
}
