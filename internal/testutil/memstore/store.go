// Package memstore implementa los puertos de persistencia en memoria para tests.
// RunCheckout no serializa checkouts de usuarios distintos: cada transacción
// anota sus propios cambios y, si fn falla, los deshace sin tocar los de otras.
// LockByUser toma un candado por usuario, como el FOR UPDATE sobre carts.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type cartLine struct {
	ID        int64
	CartID    int64
	ProductID int64
	Quantity  int
}

type state struct {
	nextID     int64
	users      map[int64]entity.User
	products   map[int64]entity.Product
	carts      map[int64]entity.Cart
	cartByUser map[int64]int64
	lines      map[int64]cartLine
	orders     map[int64]entity.Order
	orderItems []entity.OrderItem
}

func newState() state {
	return state{
		users:      map[int64]entity.User{},
		products:   map[int64]entity.Product{},
		carts:      map[int64]entity.Cart{},
		cartByUser: map[int64]int64{},
		lines:      map[int64]cartLine{},
		orders:     map[int64]entity.Order{},
	}
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.Mutex
	st        state
	cartLocks map[int64]*sync.Mutex // por usuario

	// FailClear, si no es nil, lo devuelve Clear del carrito (simula un fallo a mitad de transacción).
	FailClear error
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), cartLocks: map[int64]*sync.Mutex{}}
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }

// Carts repositorio de carritos.
func (s *Store) Carts() *CartRepo { return &CartRepo{s} }

// Orders repositorio de pedidos.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s} }

// Ledger inventario.
func (s *Store) Ledger() *Ledger { return &Ledger{s} }

// TxRunner transacciones de checkout.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s} }

// ── Semillas y lecturas directas para aserciones ──────────────────────────

// SeedUser inserta un usuario y devuelve su ID.
func (s *Store) SeedUser(name, email, role, passwordHash string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := entity.User{ID: s.id(), Name: name, Email: email, Role: role, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.st.users[u.ID] = u
	return u.ID
}

// SeedProduct inserta un producto con el ID indicado (0 = automático).
func (s *Store) SeedProduct(id int64, name string, price string, inventory int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 {
		id = s.id()
	} else if id > s.st.nextID {
		s.st.nextID = id
	}
	now := time.Now()
	s.st.products[id] = entity.Product{
		ID: id, Name: name, Price: decimal.RequireFromString(price), Inventory: inventory,
		CreatedAt: now, UpdatedAt: now,
	}
	return id
}

// Inventory existencias actuales del producto.
func (s *Store) Inventory(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[productID].Inventory
}

// CartSize número de líneas del carrito del usuario.
func (s *Store) CartSize(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cartID, ok := s.st.cartByUser[userID]
	if !ok {
		return 0
	}
	n := 0
	for _, l := range s.st.lines {
		if l.CartID == cartID {
			n++
		}
	}
	return n
}

// OrderCount número total de pedidos.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

// ── TxRunner ──────────────────────────────────────────────────────────────

// TxRunner transacciones de checkout con rollback por registro de deshacer.
type TxRunner struct{ s *Store }

// RunCheckout deshace los cambios de fn si devuelve error o entra en pánico.
func (t *TxRunner) RunCheckout(ctx context.Context, fn func(carts repository.CartRepository, orders repository.OrderRepository, ledger repository.InventoryLedger) error) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &txn{s: t.s}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
		tx.release()
	}()

	if err := fn(&txCarts{CartRepo: t.s.Carts(), tx: tx}, &txOrders{OrderRepo: t.s.Orders(), tx: tx}, &txLedger{Ledger: t.s.Ledger(), tx: tx}); err != nil {
		return err
	}
	committed = true
	return nil
}

type txn struct {
	s      *Store
	undo   []func(st *state)
	locked []*sync.Mutex
}

func (tx *txn) record(fn func(st *state)) { tx.undo = append(tx.undo, fn) }

func (tx *txn) rollback() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i](&tx.s.st)
	}
}

func (tx *txn) release() {
	for _, m := range tx.locked {
		m.Unlock()
	}
}

// saveCart guarda las líneas actuales del carrito para restaurarlas en el rollback.
func (tx *txn) saveCart(cartID int64) {
	tx.s.mu.Lock()
	var saved []cartLine
	for _, l := range tx.s.st.lines {
		if l.CartID == cartID {
			saved = append(saved, l)
		}
	}
	tx.s.mu.Unlock()
	tx.record(func(st *state) {
		for id, l := range st.lines {
			if l.CartID == cartID {
				delete(st.lines, id)
			}
		}
		for _, l := range saved {
			st.lines[l.ID] = l
		}
	})
}

type txCarts struct {
	*CartRepo
	tx *txn
}

func (c *txCarts) LockByUser(ctx context.Context, userID int64) (*entity.Cart, error) {
	c.s.mu.Lock()
	m, ok := c.s.cartLocks[userID]
	if !ok {
		m = &sync.Mutex{}
		c.s.cartLocks[userID] = m
	}
	c.s.mu.Unlock()
	m.Lock()
	c.tx.locked = append(c.tx.locked, m)
	return c.CartRepo.LockByUser(ctx, userID)
}

func (c *txCarts) UpsertItem(ctx context.Context, cartID, productID int64, qty int) error {
	c.tx.saveCart(cartID)
	return c.CartRepo.UpsertItem(ctx, cartID, productID, qty)
}

func (c *txCarts) SetItemQuantity(ctx context.Context, userID, itemID int64, qty int) (bool, error) {
	c.saveUserCart(userID)
	return c.CartRepo.SetItemQuantity(ctx, userID, itemID, qty)
}

func (c *txCarts) DeleteItem(ctx context.Context, userID, itemID int64) (bool, error) {
	c.saveUserCart(userID)
	return c.CartRepo.DeleteItem(ctx, userID, itemID)
}

func (c *txCarts) Clear(ctx context.Context, cartID int64) error {
	c.tx.saveCart(cartID)
	return c.CartRepo.Clear(ctx, cartID)
}

func (c *txCarts) saveUserCart(userID int64) {
	c.s.mu.Lock()
	cartID, ok := c.s.st.cartByUser[userID]
	c.s.mu.Unlock()
	if ok {
		c.tx.saveCart(cartID)
	}
}

type txOrders struct {
	*OrderRepo
	tx *txn
}

func (o *txOrders) Create(ctx context.Context, order *entity.Order) error {
	if err := o.OrderRepo.Create(ctx, order); err != nil {
		return err
	}
	id := order.ID
	o.tx.record(func(st *state) { delete(st.orders, id) })
	return nil
}

func (o *txOrders) AddItem(ctx context.Context, it *entity.OrderItem) error {
	if err := o.OrderRepo.AddItem(ctx, it); err != nil {
		return err
	}
	id := it.ID
	o.tx.record(func(st *state) {
		for i, x := range st.orderItems {
			if x.ID == id {
				st.orderItems = append(st.orderItems[:i], st.orderItems[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (o *txOrders) UpdateStatus(ctx context.Context, id int64, status string) error {
	o.s.mu.Lock()
	prev, ok := o.s.st.orders[id]
	o.s.mu.Unlock()
	if err := o.OrderRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if ok {
		o.tx.record(func(st *state) {
			if cur, ok := st.orders[id]; ok {
				cur.Status, cur.UpdatedAt = prev.Status, prev.UpdatedAt
				st.orders[id] = cur
			}
		})
	}
	return nil
}

type txLedger struct {
	*Ledger
	tx *txn
}

// Decrement deshace con un incremento: conmuta con los descuentos de otras transacciones.
func (l *txLedger) Decrement(ctx context.Context, productID int64, qty int) (bool, error) {
	ok, err := l.Ledger.Decrement(ctx, productID, qty)
	if err != nil || !ok {
		return ok, err
	}
	l.tx.record(func(st *state) {
		if p, found := st.products[productID]; found {
			p.Inventory += qty
			st.products[productID] = p
		}
	})
	return true, nil
}

// ── Users ─────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.st.users {
		if e.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	now := time.Now()
	u.ID, u.CreatedAt, u.UpdatedAt = r.s.id(), now, now
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) update(id int64, fn func(u *entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.s.st.users[id] = u
	return nil
}

func (r *UserRepo) UpdateDetails(_ context.Context, id int64, name, email string) error {
	return r.update(id, func(u *entity.User) { u.Name, u.Email = name, email })
}

func (r *UserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.update(id, func(u *entity.User) { u.PasswordHash = hash })
}

func (r *UserRepo) UpdateRole(_ context.Context, id int64, role string) error {
	return r.update(id, func(u *entity.User) { u.Role = role })
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.User, 0, len(r.s.st.users))
	for _, u := range r.s.st.users {
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, limit, offset), len(all), nil
}

// ── Products ──────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	p.ID, p.CreatedAt, p.UpdatedAt = r.s.id(), now, now
	cp := *p
	cp.Images = append([]string(nil), p.Images...)
	r.s.st.products[p.ID] = cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	p.Images = append([]string(nil), p.Images...)
	return &p, nil
}

func (r *ProductRepo) List(_ context.Context, f entity.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Product
	for _, p := range r.s.st.products {
		if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *ProductRepo) Update(_ context.Context, id int64, ch entity.ProductChanges) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.Description != nil {
		p.Description = *ch.Description
	}
	if ch.Price != nil {
		p.Price = *ch.Price
	}
	if ch.Inventory != nil {
		p.Inventory = *ch.Inventory
	}
	if ch.Category != nil {
		p.Category = *ch.Category
	}
	if ch.Images != nil {
		p.Images = append([]string(nil), ch.Images...)
	}
	p.UpdatedAt = time.Now()
	r.s.st.products[id] = p
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[id]; !ok {
		return domain.ErrNotFound
	}
	for _, it := range r.s.st.orderItems {
		if it.ProductID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.st.products, id)
	for lid, l := range r.s.st.lines {
		if l.ProductID == id {
			delete(r.s.st.lines, lid)
		}
	}
	return nil
}

// ── Carts ─────────────────────────────────────────────────────────────────

// CartRepo implementa repository.CartRepository.
type CartRepo struct{ s *Store }

var _ repository.CartRepository = (*CartRepo)(nil)

func (r *CartRepo) GetOrCreate(_ context.Context, userID int64) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if id, ok := r.s.st.cartByUser[userID]; ok {
		c := r.s.st.carts[id]
		return &c, nil
	}
	now := time.Now()
	c := entity.Cart{ID: r.s.id(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.s.st.carts[c.ID] = c
	r.s.st.cartByUser[userID] = c.ID
	return &c, nil
}

func (r *CartRepo) LockByUser(_ context.Context, userID int64) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.st.cartByUser[userID]
	if !ok {
		return nil, nil
	}
	c := r.s.st.carts[id]
	return &c, nil
}

func (r *CartRepo) ListItems(_ context.Context, cartID int64) ([]*entity.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CartItem
	for _, l := range r.s.st.lines {
		if l.CartID != cartID {
			continue
		}
		p := r.s.st.products[l.ProductID]
		it := &entity.CartItem{
			ID: l.ID, CartID: l.CartID, ProductID: l.ProductID, Quantity: l.Quantity,
			Name: p.Name, Price: p.Price, Inventory: p.Inventory,
		}
		if len(p.Images) > 0 {
			it.Image = p.Images[0]
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CartRepo) UpsertItem(_ context.Context, cartID, productID int64, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[productID]; !ok {
		return domain.ErrNotFound
	}
	for id, l := range r.s.st.lines {
		if l.CartID == cartID && l.ProductID == productID {
			l.Quantity += qty
			r.s.st.lines[id] = l
			return nil
		}
	}
	l := cartLine{ID: r.s.id(), CartID: cartID, ProductID: productID, Quantity: qty}
	r.s.st.lines[l.ID] = l
	return nil
}

func (r *CartRepo) owned(userID, itemID int64) (cartLine, bool) {
	l, ok := r.s.st.lines[itemID]
	if !ok {
		return cartLine{}, false
	}
	cartID, ok := r.s.st.cartByUser[userID]
	return l, ok && l.CartID == cartID
}

func (r *CartRepo) SetItemQuantity(_ context.Context, userID, itemID int64, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.owned(userID, itemID)
	if !ok {
		return false, nil
	}
	l.Quantity = qty
	r.s.st.lines[itemID] = l
	return true, nil
}

func (r *CartRepo) DeleteItem(_ context.Context, userID, itemID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.owned(userID, itemID); !ok {
		return false, nil
	}
	delete(r.s.st.lines, itemID)
	return true, nil
}

func (r *CartRepo) Clear(_ context.Context, cartID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailClear != nil {
		return r.s.FailClear
	}
	for id, l := range r.s.st.lines {
		if l.CartID == cartID {
			delete(r.s.st.lines, id)
		}
	}
	return nil
}

// ── Orders ────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ s *Store }

var _ repository.OrderRepository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	o.ID, o.CreatedAt, o.UpdatedAt = r.s.id(), now, now
	cp := *o
	cp.Items = nil
	r.s.st.orders[o.ID] = cp
	return nil
}

func (r *OrderRepo) AddItem(_ context.Context, it *entity.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.orders[it.OrderID]; !ok {
		return domain.ErrNotFound
	}
	it.ID = r.s.id()
	r.s.st.orderItems = append(r.s.st.orderItems, *it)
	return nil
}

func (r *OrderRepo) hydrate(o entity.Order) *entity.Order {
	if u, ok := r.s.st.users[o.UserID]; ok {
		o.UserName, o.UserEmail = u.Name, u.Email
	}
	o.Items = nil
	for _, it := range r.s.st.orderItems {
		if it.OrderID == o.ID {
			it.ProductName = r.s.st.products[it.ProductID].Name
			o.Items = append(o.Items, &it)
		}
	}
	return &o
}

func (r *OrderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(o), nil
}

func (r *OrderRepo) GetByPaymentIntent(_ context.Context, intentID string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.st.orders {
		if o.PaymentIntentID != nil && *o.PaymentIntentID == intentID {
			return r.hydrate(o), nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID int64) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.st.orders {
		if o.UserID == userID {
			out = append(out, r.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *OrderRepo) List(_ context.Context, f entity.OrderFilter) ([]*entity.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Order
	for _, o := range r.s.st.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.FromDate != nil && o.CreatedAt.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && !o.CreatedAt.Before(*f.ToDate) {
			continue
		}
		all = append(all, r.hydrate(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status, o.UpdatedAt = status, time.Now()
	r.s.st.orders[id] = o
	return nil
}

// ── Ledger ────────────────────────────────────────────────────────────────

// Ledger implementa repository.InventoryLedger.
type Ledger struct{ s *Store }

var _ repository.InventoryLedger = (*Ledger)(nil)

func (l *Ledger) Decrement(_ context.Context, productID int64, qty int) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	p, ok := l.s.st.products[productID]
	if !ok || p.Inventory < qty {
		return false, nil
	}
	p.Inventory -= qty
	l.s.st.products[productID] = p
	return true, nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
