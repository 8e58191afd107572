package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ItalcolColombia/miit-api-sub000/internal/dto"
	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
	"github.com/ItalcolColombia/miit-api-sub000/internal/repository"
)

type ViajeService interface {
	// CrearViajeBuque registers a vessel visit, creating buque and flota rows
	// on the fly when unknown. Duplicate puerto_id is rejected.
	CrearViajeBuque(ctx context.Context, usuarioID *int64, req dto.CrearViajeBuqueRequest) (*dto.ViajeResponse, error)
	CrearViajeCamion(ctx context.Context, usuarioID *int64, req dto.CrearViajeCamionRequest) (*dto.ViajeResponse, error)
	RegistrarIngreso(ctx context.Context, puertoID string, req dto.IngresoSalidaRequest) (*dto.ViajeResponse, error)
	RegistrarSalida(ctx context.Context, puertoID string, req dto.IngresoSalidaRequest) (*dto.ViajeResponse, error)
	// ChgEstadoFlota flips the release state of the viaje's fleet. Moving to
	// finalizado (estado=false) notifies the external operator.
	ChgEstadoFlota(ctx context.Context, puertoID string, req dto.ChgEstadoFlotaRequest) error
	GetViajeByPuertoID(ctx context.Context, puertoID string) (*dto.ViajeResponse, error)
}

// camionFinalizacion is the fleet-finalization wire payload for trucks.
type camionFinalizacion struct {
	TruckPlate       string `json:"truckPlate"`
	TruckTransaction string `json:"truckTransaction"`
	WeighingPitID    *int   `json:"weighingPitId"`
	Weight           string `json:"weight"`
}

// buqueFinalizacion is the fleet-finalization wire payload for vessels.
type buqueFinalizacion struct {
	Voyage string `json:"voyage"`
	Status string `json:"status"`
}

type viajeService struct {
	repo      repository.ViajeRepository
	flotaRepo repository.FlotaRepository
	tranRepo  repository.TransaccionRepository
	envio     EnvioService
}

func NewViajeService(
	repo repository.ViajeRepository,
	flotaRepo repository.FlotaRepository,
	tranRepo repository.TransaccionRepository,
	envio EnvioService,
) ViajeService {
	return &viajeService{repo: repo, flotaRepo: flotaRepo, tranRepo: tranRepo, envio: envio}
}

func (s *viajeService) CrearViajeBuque(ctx context.Context, usuarioID *int64, req dto.CrearViajeBuqueRequest) (*dto.ViajeResponse, error) {
	if _, err := s.repo.FindByPuertoID(ctx, req.PuertoID); err == nil {
		return nil, wrap(ErrYaRegistrado, "viaje %s ya existe", req.PuertoID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var viaje model.Viaje
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.flotaRepo.FindBuqueByNombre(ctx, req.NombreBuque); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			b := model.Buque{Nombre: req.NombreBuque, Estado: true}
			if err := s.flotaRepo.CreateBuqueTx(ctx, tx, &b); err != nil {
				return err
			}
		}

		flota, err := s.resolverFlotaTx(ctx, tx, model.FlotaBuque, req.NombreBuque, req.MaterialID, req.Peso, usuarioID)
		if err != nil {
			return err
		}

		viaje = model.Viaje{
			PuertoID:     req.PuertoID,
			FlotaID:      flota.ID,
			MaterialID:   req.MaterialID,
			FechaLlegada: parseFechaPtr(req.FechaLlegada),
		}
		return s.repo.CreateTx(ctx, tx, &viaje)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.toResponse(ctx, &viaje), nil
}

func (s *viajeService) CrearViajeCamion(ctx context.Context, usuarioID *int64, req dto.CrearViajeCamionRequest) (*dto.ViajeResponse, error) {
	if _, err := s.repo.FindByPuertoID(ctx, req.PuertoID); err == nil {
		return nil, wrap(ErrYaRegistrado, "viaje %s ya existe", req.PuertoID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var viaje model.Viaje
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.flotaRepo.FindCamionByPlaca(ctx, req.Placa); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			c := model.Camion{Placa: req.Placa}
			if err := s.flotaRepo.CreateCamionTx(ctx, tx, &c); err != nil {
				return err
			}
		}

		flota, err := s.resolverFlotaTx(ctx, tx, model.FlotaCamion, req.Placa, req.MaterialID, req.Peso, usuarioID)
		if err != nil {
			return err
		}

		viaje = model.Viaje{
			PuertoID:   req.PuertoID,
			FlotaID:    flota.ID,
			MaterialID: req.MaterialID,
		}
		return s.repo.CreateTx(ctx, tx, &viaje)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.toResponse(ctx, &viaje), nil
}

// resolverFlotaTx reuses the fleet row keyed by its natural reference or
// creates it with the visit's metadata.
func (s *viajeService) resolverFlotaTx(ctx context.Context, tx *gorm.DB, tipo, referencia string, materialID *int64, peso *decimal.Decimal, usuarioID *int64) (*model.Flota, error) {
	flota, err := s.flotaRepo.FindByReferencia(ctx, referencia)
	if err == nil {
		return flota, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	f := model.Flota{
		Tipo:       tipo,
		Referencia: referencia,
		MaterialID: materialID,
		UsuarioID:  usuarioID,
	}
	if peso != nil {
		f.Peso = *peso
	}
	if err := s.flotaRepo.CreateTx(ctx, tx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *viajeService) RegistrarIngreso(ctx context.Context, puertoID string, req dto.IngresoSalidaRequest) (*dto.ViajeResponse, error) {
	viaje, err := s.findViaje(ctx, puertoID)
	if err != nil {
		return nil, err
	}
	fecha := time.Now()
	if t := parseFechaPtr(req.FechaHora); t != nil {
		fecha = *t
	}
	viaje.FechaLlegada = &fecha
	if req.PesoReal != nil {
		viaje.PesoReal = req.PesoReal
	}
	if err := s.repo.Update(ctx, viaje); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, viaje), nil
}

func (s *viajeService) RegistrarSalida(ctx context.Context, puertoID string, req dto.IngresoSalidaRequest) (*dto.ViajeResponse, error) {
	viaje, err := s.findViaje(ctx, puertoID)
	if err != nil {
		return nil, err
	}
	fecha := time.Now()
	if t := parseFechaPtr(req.FechaHora); t != nil {
		fecha = *t
	}
	viaje.FechaSalida = &fecha
	if req.PesoReal != nil {
		viaje.PesoReal = req.PesoReal
	}
	if err := s.repo.Update(ctx, viaje); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, viaje), nil
}

func (s *viajeService) ChgEstadoFlota(ctx context.Context, puertoID string, req dto.ChgEstadoFlotaRequest) error {
	viaje, err := s.findViaje(ctx, puertoID)
	if err != nil {
		return err
	}
	tran, err := s.tranRepo.FindUltimaByViaje(ctx, viaje.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrap(ErrNoEncontrado, "viaje %s no tiene transacciones", puertoID)
		}
		return err
	}
	flota, err := s.flotaRepo.FindByID(ctx, viaje.FlotaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrap(ErrNoEncontrado, "flota %d no existe", viaje.FlotaID)
		}
		return err
	}

	if err := s.flotaRepo.UpdateEstadoOperador(ctx, flota.ID, req.Estado); err != nil {
		return err
	}

	// Solo la finalización se notifica al operador externo.
	if req.Estado {
		return nil
	}

	switch flota.Tipo {
	case model.FlotaCamion:
		peso := "0.00"
		if tran.PesoReal != nil {
			peso = tran.PesoReal.StringFixed(2)
		}
		payload := camionFinalizacion{
			TruckPlate:       flota.Referencia,
			TruckTransaction: fmtInt(tran.ID),
			WeighingPitID:    tran.Pit,
			Weight:           peso,
		}
		if err := s.envio.NotificarFinalizacionCamion(ctx, payload, flota.Referencia); err != nil {
			return err
		}
	case model.FlotaBuque:
		payload := buqueFinalizacion{Voyage: puertoID, Status: "Finished"}
		if err := s.envio.NotificarFinalizacionBuque(ctx, payload, flota.Referencia); err != nil {
			return err
		}
	}

	log.Info().
		Str("referencia", flota.Referencia).
		Str("puerto_id", puertoID).
		Bool("estado", req.Estado).
		Msg("flota finalizada y notificada")
	return nil
}

func (s *viajeService) GetViajeByPuertoID(ctx context.Context, puertoID string) (*dto.ViajeResponse, error) {
	viaje, err := s.findViaje(ctx, puertoID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, viaje), nil
}

func (s *viajeService) findViaje(ctx context.Context, puertoID string) (*model.Viaje, error) {
	viaje, err := s.repo.FindByPuertoID(ctx, puertoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrap(ErrNoEncontrado, "viaje %s no existe", puertoID)
		}
		return nil, err
	}
	return viaje, nil
}

func (s *viajeService) toResponse(ctx context.Context, v *model.Viaje) *dto.ViajeResponse {
	referencia := ""
	if v.Flota != nil {
		referencia = v.Flota.Referencia
	} else if f, err := s.flotaRepo.FindByID(ctx, v.FlotaID); err == nil {
		referencia = f.Referencia
	}
	return &dto.ViajeResponse{
		ID:           v.ID,
		PuertoID:     v.PuertoID,
		FlotaID:      v.FlotaID,
		Referencia:   referencia,
		MaterialID:   v.MaterialID,
		FechaLlegada: formatFechaPtr(v.FechaLlegada),
		FechaSalida:  formatFechaPtr(v.FechaSalida),
		PesoReal:     v.PesoReal,
	}
}

func parseFechaPtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}

func formatFechaPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := t.Format(time.RFC3339)
	return &out
}

func fmtInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
