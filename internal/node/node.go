// Package node implements the network-facing half of a running chain:
// the listening socket, the peer directory, and the per-connection
// dispatcher that executes the wire protocol's semantics against a
// shared Blockchain (spec §4.7, §4.8).
package node

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/duskchain/duskchain/internal/chain"
	klog "github.com/duskchain/duskchain/internal/log"
	"github.com/duskchain/duskchain/internal/miner"
	"github.com/duskchain/duskchain/pkg/chainerr"
	"github.com/duskchain/duskchain/pkg/wire"
	"github.com/rs/zerolog"
)

// Peer is one connected remote node: the raw connection, guarded by its
// own mutex so a gossip relay and a request's reply never interleave
// their frames on the wire.
type Peer struct {
	Addr string
	conn net.Conn
	mu   sync.Mutex
}

// Send writes a single framed message to the peer.
func (p *Peer) Send(m wire.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return wire.WriteMessage(p.conn, m)
}

func (p *Peer) recv() (wire.Message, error) {
	return wire.ReadMessage(p.conn)
}

func (p *Peer) close() error {
	return p.conn.Close()
}

// Node is the process-wide networking state: one chain and one peer
// directory keyed by address string, guarded by its own lock (spec
// §4.8). The chain has its own independent lock; Node never holds both
// at once across an I/O suspension point.
type Node struct {
	chain *chain.Blockchain

	mu    sync.RWMutex
	peers map[string]*Peer

	logger zerolog.Logger
}

// New returns a node wrapping bc. It does not start listening.
func New(bc *chain.Blockchain) *Node {
	return &Node{
		chain:  bc,
		peers:  make(map[string]*Peer),
		logger: klog.WithComponent("node"),
	}
}

// Chain returns the node's underlying chain state.
func (n *Node) Chain() *chain.Blockchain {
	return n.chain
}

// PeerAddrs returns the addresses of every currently connected peer.
func (n *Node) PeerAddrs() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.peers))
	for addr := range n.peers {
		out = append(out, addr)
	}
	return out
}

// ListenAndServe accepts inbound connections on addr, handing each one
// its own dispatcher goroutine (spec §4.8: "new inbound connections are
// given their own dispatcher goroutine identically to outbound ones").
// It blocks until the listener errors.
func (n *Node) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("node: listen %s: %w", addr, err)
	}
	n.logger.Info().Str("addr", addr).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("node: accept: %w", err)
		}
		n.adopt(conn, conn.RemoteAddr().String())
	}
}

// Connect dials addr and adopts the resulting connection as an
// outbound peer.
func (n *Node) Connect(addr string) (*Peer, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("node: dial %s: %w", addr, err)
	}
	return n.adopt(conn, addr), nil
}

func (n *Node) adopt(conn net.Conn, addr string) *Peer {
	p := &Peer{Addr: addr, conn: conn}
	n.mu.Lock()
	n.peers[addr] = p
	n.mu.Unlock()
	go n.dispatchLoop(p)
	return p
}

func (n *Node) drop(p *Peer) {
	n.mu.Lock()
	delete(n.peers, p.Addr)
	n.mu.Unlock()
	p.close()
}

// dispatchLoop reads framed messages from p until the connection
// closes or errors, handling each one in turn. One goroutine per peer;
// no lock is held across the blocking read.
func (n *Node) dispatchLoop(p *Peer) {
	defer n.drop(p)
	for {
		msg, err := p.recv()
		if err != nil {
			n.logger.Debug().Str("peer", p.Addr).Err(err).Msg("peer connection closed")
			return
		}
		if err := n.handle(p, msg); err != nil {
			n.logger.Warn().Str("peer", p.Addr).Str("message", msg.Type.String()).Err(err).Msg("message handling failed")
		}
	}
}

// broadcastExcept forwards m to every connected peer other than from.
func (n *Node) broadcastExcept(from *Peer, m wire.Message) {
	n.mu.RLock()
	targets := make([]*Peer, 0, len(n.peers))
	for addr, p := range n.peers {
		if from != nil && addr == from.Addr {
			continue
		}
		targets = append(targets, p)
	}
	n.mu.RUnlock()

	for _, p := range targets {
		if err := p.Send(m); err != nil {
			n.logger.Debug().Str("peer", p.Addr).Err(err).Msg("broadcast failed")
		}
	}
}

// handle executes the semantics of a single inbound message against
// the shared chain (spec §4.7's table).
func (n *Node) handle(p *Peer, msg wire.Message) error {
	switch msg.Type {
	case wire.TypeFetchUTXOs:
		return n.handleFetchUTXOs(p, msg)
	case wire.TypeSubmitTransaction:
		return n.handleSubmitTransaction(p, msg)
	case wire.TypeNewTransaction:
		return n.handleNewTransaction(p, msg)
	case wire.TypeFetchTemplate:
		return n.handleFetchTemplate(p, msg)
	case wire.TypeValidateTemplate:
		return n.handleValidateTemplate(p, msg)
	case wire.TypeSubmitTemplate:
		return n.handleSubmitTemplate(p, msg)
	case wire.TypeDiscoverNodes:
		return p.Send(wire.NewNodeList(n.PeerAddrs()))
	case wire.TypeAskDifference:
		delta := int32(n.chain.Height()) - int32(msg.Height)
		return p.Send(wire.NewDifference(delta))
	case wire.TypeFetchBlock:
		return n.handleFetchBlock(p, msg)
	case wire.TypeNewBlock:
		return n.handleNewBlock(p, msg)
	default:
		return fmt.Errorf("node: unexpected message type %s", msg.Type)
	}
}

func (n *Node) handleFetchUTXOs(p *Peer, msg wire.Message) error {
	if msg.PublicKey == nil {
		return fmt.Errorf("node: FetchUTXOs with no public key")
	}
	views := n.chain.UTXOsForKey(msg.PublicKey)
	entries := make([]wire.UTXOEntry, len(views))
	for i, v := range views {
		entries[i] = wire.UTXOEntry{Output: v.Output, Reserved: v.Reserved}
	}
	return p.Send(wire.NewUTXOs(entries))
}

func (n *Node) handleSubmitTransaction(p *Peer, msg wire.Message) error {
	if msg.Transaction == nil {
		return fmt.Errorf("node: SubmitTransaction with no transaction")
	}
	if err := n.chain.AddToMempool(*msg.Transaction); err != nil {
		return err
	}
	n.broadcastExcept(p, wire.NewNewTransaction(*msg.Transaction))
	return nil
}

func (n *Node) handleNewTransaction(p *Peer, msg wire.Message) error {
	if msg.Transaction == nil {
		return fmt.Errorf("node: NewTransaction with no transaction")
	}
	// A gossiped transaction may already be pending or may conflict with
	// one we already hold; either is a normal outcome of flooding, not an
	// error worth tearing the connection down over.
	if err := n.chain.AddToMempool(*msg.Transaction); err != nil {
		if errors.Is(err, chainerr.ErrInvalidTransaction) {
			return nil
		}
		return err
	}
	n.broadcastExcept(p, msg)
	return nil
}

func (n *Node) handleFetchTemplate(p *Peer, msg wire.Message) error {
	if msg.PublicKey == nil {
		return fmt.Errorf("node: FetchTemplate with no public key")
	}
	tmpl, err := miner.BuildTemplate(n.chain, msg.PublicKey)
	if err != nil {
		return err
	}
	return p.Send(wire.NewTemplate(tmpl))
}

func (n *Node) handleValidateTemplate(p *Peer, msg wire.Message) error {
	if msg.Block == nil {
		return fmt.Errorf("node: ValidateTemplate with no block")
	}
	return p.Send(wire.NewTemplateValidity(miner.StillValid(n.chain, *msg.Block)))
}

func (n *Node) handleSubmitTemplate(p *Peer, msg wire.Message) error {
	if msg.Block == nil {
		return fmt.Errorf("node: SubmitTemplate with no block")
	}
	if err := n.chain.AddBlock(*msg.Block); err != nil {
		return err
	}
	n.broadcastExcept(p, wire.NewNewBlock(*msg.Block))
	return nil
}

func (n *Node) handleFetchBlock(p *Peer, msg wire.Message) error {
	b, ok := n.chain.BlockAt(msg.Height)
	if !ok {
		return fmt.Errorf("node: no block at height %d", msg.Height)
	}
	return p.Send(wire.NewNewBlock(b))
}

func (n *Node) handleNewBlock(p *Peer, msg wire.Message) error {
	if msg.Block == nil {
		return fmt.Errorf("node: NewBlock with no block")
	}
	if err := n.chain.AddBlock(*msg.Block); err != nil {
		return err
	}
	n.broadcastExcept(p, msg)
	return nil
}
