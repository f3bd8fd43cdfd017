package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/danmuck/slotbox/internal/command"
	"github.com/danmuck/slotbox/internal/comms"
	"github.com/danmuck/slotbox/internal/object"
	"github.com/danmuck/slotbox/internal/stream"
)

// Client speaks the hex line protocol against one box endpoint. The
// connection is dialed lazily and reused across commands.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	r       *bufio.Reader
}

func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{addr: strings.TrimSpace(addr), timeout: timeout}
}

// call sends one request line and returns the decoded response bytes.
func (c *Client) call(req []byte) ([]byte, error) {
	if err := c.ensureConn(); err != nil {
		return nil, err
	}
	var line strings.Builder
	out := comms.NewHexOut(&line)
	out.Write(req)
	if err := out.EndResponse(); err != nil {
		return nil, err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	if _, err := c.conn.Write([]byte(line.String())); err != nil {
		c.resetConn()
		return nil, err
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	resp, err := c.r.ReadBytes('\n')
	if err != nil {
		c.resetConn()
		return nil, err
	}
	in := comms.NewHexIn(resp)
	var decoded []byte
	for in.HasNext() {
		decoded = append(decoded, in.Next())
	}
	return decoded, nil
}

// command round-trips req, checks the opcode echo and status, and
// returns the payload of a successful response.
func (c *Client) command(req []byte) ([]byte, error) {
	resp, err := c.call(req)
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("short response % X", resp)
	}
	if resp[0] != req[0] {
		return nil, fmt.Errorf("response echoes op %#x, sent %#x", resp[0], req[0])
	}
	if st := object.Status(int8(resp[1])); !st.OK() {
		return nil, fmt.Errorf("box replied %s", st)
	}
	return resp[2:], nil
}

func (c *Client) ensureConn() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", c.addr, 3*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	c.r = bufio.NewReader(conn)
	return nil
}

func (c *Client) resetConn() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.r = nil
}

// Close terminates the persistent command connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.r = nil
	return err
}

func (c *Client) ReadValue(op command.Opcode, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("chain required")
	}
	chain, err := chainBytes(args[0])
	if err != nil {
		return "", err
	}
	payload, err := c.command(append([]byte{byte(op)}, chain...))
	if err != nil {
		return "", err
	}
	if len(payload) < 1 || int(payload[0]) != len(payload)-1 {
		return "", fmt.Errorf("malformed read payload % X", payload)
	}
	return fmt.Sprintf("value: %s\n", hexPairs(payload[1:])), nil
}

func (c *Client) WriteValue(op command.Opcode, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("chain and hex payload required")
	}
	chain, err := chainBytes(args[0])
	if err != nil {
		return "", err
	}
	data, err := hexArg(args[1])
	if err != nil {
		return "", err
	}
	if len(data) > 0xFF {
		return "", fmt.Errorf("payload too long (%d bytes)", len(data))
	}
	req := append([]byte{byte(op)}, chain...)
	req = append(req, byte(len(data)))
	req = append(req, data...)
	payload, err := c.command(req)
	if err != nil {
		return "", err
	}
	if len(payload) < 1 || int(payload[0]) != len(payload)-1 {
		return "", fmt.Errorf("malformed write readback % X", payload)
	}
	return fmt.Sprintf("written, readback: %s\n", hexPairs(payload[1:])), nil
}

func (c *Client) CreateObject(args []string) (string, error) {
	if len(args) != 2 && len(args) != 3 {
		return "", fmt.Errorf("chain and type required, definition payload optional")
	}
	chain, err := chainBytes(args[0])
	if err != nil {
		return "", err
	}
	typ, err := typeArg(args[1])
	if err != nil {
		return "", err
	}
	var def []byte
	if len(args) == 3 {
		if def, err = hexArg(args[2]); err != nil {
			return "", err
		}
		if len(def) > 0xFF {
			return "", fmt.Errorf("definition too long (%d bytes)", len(def))
		}
	}
	req := append([]byte{byte(command.OpCreateObject)}, chain...)
	req = append(req, typ, byte(len(def)))
	req = append(req, def...)
	if _, err := c.command(req); err != nil {
		return "", err
	}
	return fmt.Sprintf("created %s\n", args[0]), nil
}

func (c *Client) DeleteObject(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("chain required")
	}
	chain, err := chainBytes(args[0])
	if err != nil {
		return "", err
	}
	if _, err := c.command(append([]byte{byte(command.OpDeleteObject)}, chain...)); err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted %s\n", args[0]), nil
}

func (c *Client) ListObjects() (string, error) {
	payload, err := c.command([]byte{byte(command.OpListObjects)})
	if err != nil {
		return "", err
	}
	return renderRecords(payload)
}

func (c *Client) NextFreeSlot(args []string) (string, error) {
	var req []byte
	switch len(args) {
	case 0:
		req = []byte{byte(command.OpNextFreeSlotRoot)}
	case 1:
		chain, err := chainBytes(args[0])
		if err != nil {
			return "", err
		}
		req = append([]byte{byte(command.OpNextFreeSlot)}, chain...)
	default:
		return "", fmt.Errorf("at most one chain argument")
	}
	payload, err := c.command(req)
	if err != nil {
		return "", err
	}
	if len(payload) != 1 {
		return "", fmt.Errorf("malformed free-slot payload % X", payload)
	}
	return fmt.Sprintf("next free slot: %d\n", payload[0]), nil
}

func (c *Client) LogValues() (string, error) {
	payload, err := c.command([]byte{byte(command.OpLogValues)})
	if err != nil {
		return "", err
	}
	return renderLoggedValues(payload)
}

func (c *Client) ListProfiles() (string, error) {
	payload, err := c.command([]byte{byte(command.OpListProfiles)})
	if err != nil {
		return "", err
	}
	if len(payload) < 1 {
		return "", fmt.Errorf("malformed profile list % X", payload)
	}
	var b strings.Builder
	if payload[0] == 0xFF {
		b.WriteString("active: none\n")
	} else {
		fmt.Fprintf(&b, "active: %d\n", payload[0])
	}
	if len(payload) == 1 {
		b.WriteString("in use: none\n")
		return b.String(), nil
	}
	ids := make([]string, 0, len(payload)-1)
	for _, id := range payload[1:] {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	fmt.Fprintf(&b, "in use: %s\n", strings.Join(ids, " "))
	return b.String(), nil
}

func (c *Client) CreateProfile() (string, error) {
	payload, err := c.command([]byte{byte(command.OpCreateProfile)})
	if err != nil {
		return "", err
	}
	if len(payload) != 1 {
		return "", fmt.Errorf("malformed create-profile payload % X", payload)
	}
	return fmt.Sprintf("created profile %d\n", payload[0]), nil
}

func (c *Client) DeleteProfile(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("profile id required")
	}
	id, err := idArg(args[0], "profile id")
	if err != nil {
		return "", err
	}
	if _, err := c.command([]byte{byte(command.OpDeleteProfile), id}); err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted profile %d\n", id), nil
}

func (c *Client) ActivateProfile(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("profile id or none required")
	}
	if args[0] == "none" {
		if _, err := c.command([]byte{byte(command.OpActivateProfile), 0xFF}); err != nil {
			return "", err
		}
		return "deactivated\n", nil
	}
	id, err := idArg(args[0], "profile id")
	if err != nil {
		return "", err
	}
	if _, err := c.command([]byte{byte(command.OpActivateProfile), id}); err != nil {
		return "", err
	}
	return fmt.Sprintf("activated profile %d\n", id), nil
}

func (c *Client) Reset(erase bool) (string, error) {
	flags := byte(0)
	if erase {
		flags = command.ResetEraseProfiles
	}
	if _, err := c.command([]byte{byte(command.OpReset), flags}); err != nil {
		return "", err
	}
	if erase {
		return "reset ok, profiles erased\n", nil
	}
	return "reset ok\n", nil
}

func (c *Client) Raw(args []string) (string, error) {
	data, err := hexArg(strings.Join(args, " "))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("hex bytes required")
	}
	resp, err := c.call(data)
	if err != nil {
		return "", err
	}
	st := "short response"
	if len(resp) >= 2 {
		st = object.Status(int8(resp[1])).String()
	}
	return fmt.Sprintf("response: %s (%s)\n", hexPairs(resp), st), nil
}

func renderRecords(payload []byte) (string, error) {
	in := stream.NewBufferIn(payload)
	var b strings.Builder
	n := 0
	for in.HasNext() {
		if in.Next() != byte(command.OpCreateObject) {
			return "", fmt.Errorf("malformed record stream % X", payload)
		}
		chain, ok := object.DecodeChain(in)
		if !ok {
			return "", fmt.Errorf("malformed record stream % X", payload)
		}
		if !in.HasNext() {
			return "", fmt.Errorf("malformed record stream % X", payload)
		}
		typ := in.Next()
		if !in.HasNext() {
			return "", fmt.Errorf("malformed record stream % X", payload)
		}
		def := make([]byte, in.Next())
		if !stream.ReadBytes(in, def) {
			return "", fmt.Errorf("malformed record stream % X", payload)
		}
		fmt.Fprintf(&b, "%s type=0x%02X def=%s\n", chain, typ, hexPairs(def))
		n++
	}
	if n == 0 {
		return "no records\n", nil
	}
	return b.String(), nil
}

func renderLoggedValues(payload []byte) (string, error) {
	in := stream.NewBufferIn(payload)
	var b strings.Builder
	n := 0
	for in.HasNext() {
		chain, ok := object.DecodeChain(in)
		if !ok {
			return "", fmt.Errorf("malformed log stream % X", payload)
		}
		if !in.HasNext() {
			return "", fmt.Errorf("malformed log stream % X", payload)
		}
		data := make([]byte, in.Next())
		if !stream.ReadBytes(in, data) {
			return "", fmt.Errorf("malformed log stream % X", payload)
		}
		fmt.Fprintf(&b, "%s = %s\n", chain, hexPairs(data))
		n++
	}
	if n == 0 {
		return "no logged values\n", nil
	}
	return b.String(), nil
}

func chainBytes(arg string) ([]byte, error) {
	chain, err := object.ParseChain(arg)
	if err != nil {
		return nil, err
	}
	out := stream.NewBufferOut(object.MaxDepth)
	if !object.EncodeChain(chain, out) {
		return nil, fmt.Errorf("chain %q does not encode", arg)
	}
	return out.Bytes(), nil
}

func hexArg(arg string) ([]byte, error) {
	clean := strings.ReplaceAll(arg, " ", "")
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex %q", arg)
	}
	p, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("bad hex %q: %w", arg, err)
	}
	return p, nil
}

func hexPairs(p []byte) string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
