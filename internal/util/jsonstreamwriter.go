package util

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type JsonStreamWriterItem struct {
	Key  string
	Data []byte
}

// JsonStreamWriter writes one JSON object, member by member, as items arrive
// on Input. The closing brace is written by Close.
type JsonStreamWriter[I any] struct {
	Input         chan JsonStreamWriterItem
	waiter        sync.WaitGroup
	out           io.Writer
	lock          sync.Mutex
	isInitialized bool
	err           error
	count         int
	convert       func(I) (JsonStreamWriterItem, error)
}

func NewJsonStreamWriter[I any](out io.Writer, convert func(I) (JsonStreamWriterItem, error)) (*JsonStreamWriter[I], error) {
	stream := &JsonStreamWriter[I]{
		Input:   make(chan JsonStreamWriterItem, 64),
		out:     out,
		convert: convert,
	}
	_, err := io.WriteString(stream.out, "{")
	if err != nil {
		return nil, err
	}

	stream.waiter.Add(1)
	go stream.writer()

	return stream, nil
}

func (stream *JsonStreamWriter[I]) writer() {
	defer stream.waiter.Done()
	for item := range stream.Input {
		err := stream.WriteItem(item.Key, item.Data)
		if err != nil {
			logrus.Errorf("json stream: writing %q failed: %v", item.Key, err)
		}
	}
}

func formatMember(key string, data []byte, initialized bool) (string, error) {
	encodedKey, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	if initialized {
		return fmt.Sprintf(",\n%s: %s", encodedKey, data), nil
	}
	return fmt.Sprintf("\n%s: %s", encodedKey, data), nil
}

func (stream *JsonStreamWriter[I]) WriteItem(key string, data []byte) error {
	stream.lock.Lock()
	defer stream.lock.Unlock()

	if stream.err != nil {
		return stream.err
	}
	if !json.Valid(data) {
		return fmt.Errorf("item %q is not valid JSON", key)
	}

	s, err := formatMember(key, data, stream.isInitialized)
	if err != nil {
		return err
	}

	_, err = io.WriteString(stream.out, s)
	if err != nil {
		stream.err = err
		return err
	}
	stream.isInitialized = true
	stream.count++
	return nil
}

func (stream *JsonStreamWriter[I]) WriteObject(obj I) {
	item, err := stream.convert(obj)
	if err != nil {
		logrus.Warnf("json stream: could not write item because conversion failed: %v", err)
		return
	}
	stream.Input <- item
}

// Count returns how many members were written so far.
func (stream *JsonStreamWriter[I]) Count() int {
	stream.lock.Lock()
	defer stream.lock.Unlock()
	return stream.count
}

func (stream *JsonStreamWriter[I]) Close() error {
	close(stream.Input)

	stream.waiter.Wait()

	stream.lock.Lock()
	defer stream.lock.Unlock()

	if stream.err != nil {
		return stream.err
	}

	closing := "}\n"
	if stream.isInitialized {
		closing = "\n}\n"
	}
	_, err := io.WriteString(stream.out, closing)
	if err != nil {
		return fmt.Errorf("writing closing bracket: %w", err)
	}
	return nil
}
