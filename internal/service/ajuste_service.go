package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

const defaultMotivo = "Ajuste automático"

type AjusteService interface {
	CrearAjuste(ctx context.Context, usuarioID int64, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error)
	ListAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error)
	ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	// ListSaldos returns current balances, optionally filtered by silo.
	ListSaldos(ctx context.Context, almacenamientoID int64) ([]dto.SaldoResponse, error)
}

type ajusteService struct {
	repo      repository.AjusteRepository
	movRepo   repository.MovimientoRepository
	almMat    repository.AlmacenamientoMaterialRepository
	auditoria AuditoriaService
}

func NewAjusteService(
	repo repository.AjusteRepository,
	movRepo repository.MovimientoRepository,
	almMat repository.AlmacenamientoMaterialRepository,
	auditoria AuditoriaService,
) AjusteService {
	return &ajusteService{repo: repo, movRepo: movRepo, almMat: almMat, auditoria: auditoria}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CrearAjuste ───────────────────────────────────────────────────────────────
// Fija el saldo de (almacenamiento, material) a SaldoNuevo dentro de una sola
// transacción:
//   1. leer saldo vigente (0 si el par no existe)
//   2. delta = nuevo − anterior; delta == 0 se rechaza sin escribir nada
//   3. crear Ajuste (motivo normalizado)
//   4. crear Movimiento espejo (Entrada/Salida según signo, peso |delta|)
//   5. enlazar ajuste.movimiento_id
//   6. upsert del saldo (update; insert si el par es nuevo)
//   7. auditar ajuste y movimiento en la misma transacción
//   8. COMMIT
//   9. replay de auditorías fallidas en sesión fresca / outbox
//  10. responder con el ajuste persistido

func (s *ajusteService) CrearAjuste(ctx context.Context, usuarioID int64, req dto.CrearAjusteRequest) (*dto.AjusteResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		motivo = defaultMotivo
	}

	var (
		ajuste     model.Ajuste
		mov        model.Movimiento
		pendientes []model.LogAuditoria
	)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		saldoAnterior, err := s.almMat.GetSaldoTx(ctx, tx, req.AlmacenamientoID, req.MaterialID)
		if err != nil {
			return err
		}

		saldoNuevo := req.SaldoNuevo
		delta := saldoNuevo.Sub(saldoAnterior)
		if delta.IsZero() {
			return wrap(ErrOperacionInvalida, "el saldo nuevo es igual al actual")
		}

		tipo := model.MovimientoEntrada
		if delta.IsNegative() {
			tipo = model.MovimientoSalida
		}

		ajuste = model.Ajuste{
			AlmacenamientoID: req.AlmacenamientoID,
			MaterialID:       req.MaterialID,
			SaldoAnterior:    saldoAnterior,
			SaldoNuevo:       saldoNuevo,
			Delta:            delta,
			Motivo:           motivo,
			UsuarioID:        usuarioID,
		}
		if err := s.repo.CreateTx(ctx, tx, &ajuste); err != nil {
			return err
		}

		obs := fmt.Sprintf("Ajuste #%d: %s", ajuste.ID, truncate(motivo, 50))
		uid := usuarioID
		mov = model.Movimiento{
			TransaccionID:    nil,
			AlmacenamientoID: req.AlmacenamientoID,
			MaterialID:       req.MaterialID,
			Tipo:             tipo,
			Accion:           model.AccionAjuste,
			Observacion:      &obs,
			FechaHora:        time.Now(),
			Peso:             delta.Abs(),
			SaldoAnterior:    saldoAnterior,
			SaldoNuevo:       &saldoNuevo,
			UsuarioID:        &uid,
		}
		if err := s.movRepo.CreateTx(ctx, tx, &mov); err != nil {
			return err
		}

		if err := s.repo.SetMovimientoTx(ctx, tx, ajuste.ID, mov.ID); err != nil {
			return err
		}
		ajuste.MovimientoID = &mov.ID

		rows, err := s.almMat.UpdateSaldoTx(ctx, tx, req.AlmacenamientoID, req.MaterialID, saldoNuevo, usuarioID)
		if err != nil {
			return err
		}
		if rows == 0 {
			am := model.AlmacenamientoMaterial{
				AlmacenamientoID: req.AlmacenamientoID,
				MaterialID:       req.MaterialID,
				Saldo:            saldoNuevo,
				FechaHora:        time.Now(),
				UsuarioID:        &uid,
			}
			if err := s.almMat.InsertTx(ctx, tx, &am); err != nil {
				return err
			}
		}

		entAjuste := NuevaEntrada("ajustes", ajuste.ID,
			Snapshot(ajuste, ajuste.ID, "saldo_nuevo", saldoNuevo), &uid)
		if p := s.auditoria.RegistrarTx(ctx, tx, entAjuste); p != nil {
			pendientes = append(pendientes, *p)
		}
		entMov := NuevaEntrada("movimientos", mov.ID,
			Snapshot(mov, mov.ID, "peso", mov.Peso), &uid)
		if p := s.auditoria.RegistrarTx(ctx, tx, entMov); p != nil {
			pendientes = append(pendientes, *p)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Post-commit: las auditorías que no entraron en la transacción se
	// reintentan fuera de banda. Nunca afectan el resultado del ajuste.
	if len(pendientes) > 0 {
		s.auditoria.RegistrarDiferidos(ctx, pendientes)
	}

	return &dto.AjusteResponse{
		ID:               ajuste.ID,
		AlmacenamientoID: ajuste.AlmacenamientoID,
		MaterialID:       ajuste.MaterialID,
		SaldoAnterior:    ajuste.SaldoAnterior,
		SaldoNuevo:       ajuste.SaldoNuevo,
		Delta:            ajuste.Delta,
		Motivo:           ajuste.Motivo,
		MovimientoID:     ajuste.MovimientoID,
		UsuarioID:        ajuste.UsuarioID,
		FechaHora:        ajuste.FechaHora.Format(time.RFC3339),
	}, nil
}

func (s *ajusteService) ListAjustes(ctx context.Context, filter dto.AjusteFilter) (*dto.AjusteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ajustes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AjusteResponse, 0, len(ajustes))
	for _, a := range ajustes {
		items = append(items, dto.AjusteResponse{
			ID:               a.ID,
			AlmacenamientoID: a.AlmacenamientoID,
			MaterialID:       a.MaterialID,
			SaldoAnterior:    a.SaldoAnterior,
			SaldoNuevo:       a.SaldoNuevo,
			Delta:            a.Delta,
			Motivo:           a.Motivo,
			MovimientoID:     a.MovimientoID,
			UsuarioID:        a.UsuarioID,
			FechaHora:        a.FechaHora.Format(time.RFC3339),
		})
	}
	return &dto.AjusteListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ajusteService) ListMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movs, total, err := s.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.MovimientoResponse{
			ID:               m.ID,
			TransaccionID:    m.TransaccionID,
			AlmacenamientoID: m.AlmacenamientoID,
			MaterialID:       m.MaterialID,
			Tipo:             m.Tipo,
			Accion:           m.Accion,
			Observacion:      m.Observacion,
			Peso:             m.Peso,
			SaldoAnterior:    m.SaldoAnterior,
			SaldoNuevo:       m.SaldoNuevo,
			FechaHora:        m.FechaHora.Format(time.RFC3339),
		})
	}
	return &dto.MovimientoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ajusteService) ListSaldos(ctx context.Context, almacenamientoID int64) ([]dto.SaldoResponse, error) {
	saldos, err := s.almMat.ListSaldos(ctx, almacenamientoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaldoResponse, 0, len(saldos))
	for _, am := range saldos {
		out = append(out, dto.SaldoResponse{
			AlmacenamientoID: am.AlmacenamientoID,
			MaterialID:       am.MaterialID,
			Saldo:            am.Saldo,
			FechaHora:        am.FechaHora.Format(time.RFC3339),
		})
	}
	return out, nil
}

// truncate cuts s to max runes without splitting a multibyte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
