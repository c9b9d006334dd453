package handler

import (
	"net"
	"os"
)

type fileConn interface {
	File() (*os.File, error)
}

// duplicate は同じソケットを指す別のコネクションを返す
// ソケットを複製できない場合は conn 自体を返し、handedOff を true にする
func duplicate(conn net.Conn) (dup net.Conn, handedOff bool, err error) {
	fc, ok := conn.(fileConn)
	if !ok {
		return conn, true, nil
	}

	f, err := fc.File()
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	dup, err = net.FileConn(f)
	if err != nil {
		return nil, false, err
	}
	return dup, false, nil
}
