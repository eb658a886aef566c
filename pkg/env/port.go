package env

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

const (
	dialPrefix   = "tcp://"
	listenPrefix = "listen://"
)

// OpenPort opens the configured port.
func (c *Config) OpenPort() (io.ReadWriteCloser, error) {
	switch {
	case strings.HasPrefix(c.Port, dialPrefix):
		conn, err := net.Dial("tcp", c.Port[len(dialPrefix):])
		if err != nil {
			return nil, fmt.Errorf("open port %s: %w", c.Port, err)
		}
		return conn, nil
	case strings.HasPrefix(c.Port, listenPrefix):
		return acceptOne(c.Port[len(listenPrefix):])
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Port,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open port %s: %w", c.Port, err)
	}
	return port, nil
}

func acceptOne(addr string) (io.ReadWriteCloser, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	defer ln.Close()
	glog.Infof("waiting for connection on %s", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept %s: %w", addr, err)
	}
	glog.Infof("connected from %s", conn.RemoteAddr())
	return conn, nil
}
