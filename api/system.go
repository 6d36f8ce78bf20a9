package api

import (
	"encoding/json"
	"net/http"

	"github.com/artmural/mural/types"
)

// initSystem creates the system singletons
// POST /system/init
func (a *API) initSystem(w http.ResponseWriter, r *http.Request) {
	req := &InitRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	authority, err := types.IdentityFromBytes(req.Authority)
	if err != nil {
		ErrMalformedBody.Withf("could not decode authority: %v", err).Write(w)
		return
	}
	sys, err := a.machine.InitSystem(authority, req.SubmissionFee)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, sys)
}

// systemState returns the system state singleton
// GET /system
func (a *API) systemState(w http.ResponseWriter, r *http.Request) {
	sys, err := a.machine.Storage().SystemState()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	httpWriteJSON(w, sys)
}

// encryptionKey returns the cluster public key voters encrypt to
// GET /system/encryption-key
func (a *API) encryptionKey(w http.ResponseWriter, r *http.Request) {
	pub := a.machine.Coordinator().Engine().ClusterPubkey()
	httpWriteJSON(w, &EncryptionKeyResponse{PublicKey: pub[:]})
}

// roundMetadata returns the live round cursor
// GET /rounds/current
func (a *API) roundMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := a.machine.Storage().RoundMetadata()
	if err != nil {
		ErrResourceNotFound.With("system not initialized").Write(w)
		return
	}
	httpWriteJSON(w, meta)
}

// account returns a participant balance
// GET /accounts/{accountId}
func (a *API) account(w http.ResponseWriter, r *http.Request) {
	id, ok := urlIdentity(r, AccountURLParam)
	if !ok {
		ErrMalformedParam.With("could not decode account id").Write(w)
		return
	}
	account, err := a.machine.Storage().Account(id)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, account)
}
