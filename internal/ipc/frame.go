// Package ipc implements the length-prefixed framing the task
// executor boundary uses to exchange request/response messages with
// its host process (spec.md §6 "executor IPC framing", grounded on
// task_executor/task_executor.py's receive_message and
// task_executor_message.py). This boundary is out of the client's
// core scope; the framing is kept here as a small, self-contained
// leaf so a future executor implementation has somewhere to plug in.
package ipc

import (
	"bufio"
	"io"
	"strconv"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

// HeaderSize is the fixed width, in bytes, of a frame's decimal
// length header (spec.md §6).
const HeaderSize = 16

// RequestKind enumerates the executor's inbound message kinds
// (spec.md §6, grounded on TaskExecutorRequestType).
type RequestKind int

const (
	RequestUnknown RequestKind = iota
	RequestArguments
	RequestResume
)

// ResponseKind enumerates the executor's outbound message kinds
// (spec.md §6, grounded on TaskExecutorResponseType).
type ResponseKind int

const (
	ResponseUnknown ResponseKind = iota
	ResponseResult
	ResponseError
	ResponseBlock
	ResponseReady
	ResponseCancel
)

// ReceiveFrame reads one length-prefixed frame from r: a HeaderSize
// zero-padded decimal length, then exactly that many body bytes. It
// returns a framing_error if the body is short (spec.md §6, §7;
// grounded on receive_message's EOFError).
func ReceiveFrame(r *bufio.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, core.NewFramingError("reading frame header").WithCause(err)
	}

	bodySize, err := strconv.Atoi(trimHeader(header))
	if err != nil {
		return nil, core.NewFramingError("parsing frame header %q", string(header)).WithCause(err)
	}

	body := make([]byte, bodySize)
	n, err := io.ReadFull(r, body)
	if err != nil || n != bodySize {
		return nil, core.NewFramingError("received message body size does not match header size")
	}
	return body, nil
}

// SendFrame writes body to w prefixed with its zero-padded decimal
// length header.
func SendFrame(w io.Writer, body []byte) error {
	header := make([]byte, HeaderSize)
	digits := strconv.Itoa(len(body))
	copy(header[HeaderSize-len(digits):], digits)
	for i := 0; i < HeaderSize-len(digits); i++ {
		header[i] = '0'
	}

	if _, err := w.Write(header); err != nil {
		return core.NewFramingError("writing frame header").WithCause(err)
	}
	if _, err := w.Write(body); err != nil {
		return core.NewFramingError("writing frame body").WithCause(err)
	}
	return nil
}

func trimHeader(header []byte) string {
	i := 0
	for i < len(header) && header[i] == '0' {
		i++
	}
	if i == len(header) {
		return "0"
	}
	return string(header[i:])
}
