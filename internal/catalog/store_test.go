package catalog

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/pricing"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	cfg := pricing.Config{DeliveryFee: decimal.NewFromInt(3)}
	before := time.Now()
	s.Update([]api.Cleaner{{ID: "c1"}, {ID: "c2"}}, &cfg, nil)
	s.SetServices("c1", []api.Service{{ID: "s1", Options: []string{"button"}}})

	snap := s.Snapshot()
	if len(snap.Cleaners) != 2 || snap.Cleaners[0].ID != "c1" {
		t.Fatalf("snapshot cleaners = %#v, want 2 cleaners", snap.Cleaners)
	}
	if !snap.HasPricing || !snap.PricingOrDefault().DeliveryFee.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("snapshot pricing = %#v, want delivery fee 3", snap.Pricing)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	snap.Cleaners[0].ID = "mutated"
	snap.Services["c1"][0].Options[0] = "mutated"
	snap2 := s.Snapshot()
	if snap2.Cleaners[0].ID != "c1" {
		t.Fatalf("Snapshot should clone cleaners; got %q", snap2.Cleaners[0].ID)
	}
	if snap2.Services["c1"][0].Options[0] != "button" {
		t.Fatalf("Snapshot should clone service options; got %q", snap2.Services["c1"][0].Options[0])
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.Update([]api.Cleaner{{ID: "c1"}}, nil, nil)

	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if len(snap.Cleaners) != 1 {
		t.Fatalf("cleaners changed on error: %#v", snap.Cleaners)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if snap.HasPricing {
		t.Fatalf("HasPricing = true, want false without a pricing fetch")
	}
	if !snap.PricingOrDefault().MinimumOrder.Equal(pricing.Default().MinimumOrder) {
		t.Fatalf("PricingOrDefault should fall back to defaults")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	for i, wantOffline := range []bool{false, true, true} {
		s.Update(nil, nil, errors.New("fail"))
		snap := s.Snapshot()
		if snap.ConsecutiveFailures != i+1 {
			t.Fatalf("ConsecutiveFailures = %d, want %d", snap.ConsecutiveFailures, i+1)
		}
		if snap.IsOffline() != wantOffline {
			t.Fatalf("IsOffline() = %v after %d failures, want %v", snap.IsOffline(), i+1, wantOffline)
		}
	}

	s.Update(nil, nil, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success should reset failures; got %d", snap.ConsecutiveFailures)
	}
}

func TestCategories(t *testing.T) {
	services := []api.Service{
		{ID: "1", Category: "Shirts"},
		{ID: "2", Category: "Dresses"},
		{ID: "3", Category: "Shirts"},
	}
	got := Categories(services)
	if !reflect.DeepEqual(got, []string{"Shirts", "Dresses"}) {
		t.Fatalf("Categories = %v, want [Shirts Dresses]", got)
	}

	shirts := ByCategory(services, "Shirts")
	if len(shirts) != 2 || shirts[1].ID != "3" {
		t.Fatalf("ByCategory = %#v, want services 1 and 3", shirts)
	}
	if len(services) != 3 {
		t.Fatalf("ByCategory mutated its input")
	}
	if all := ByCategory(services, ""); len(all) != 3 {
		t.Fatalf("ByCategory(\"\") = %d services, want 3", len(all))
	}

	snap := Snapshot{Cleaners: []api.Cleaner{{ID: "c1", ShopName: "Pressed"}}}
	if c, ok := snap.Cleaner("c1"); !ok || c.ShopName != "Pressed" {
		t.Fatalf("Cleaner(c1) = %#v, %v", c, ok)
	}
	if _, ok := snap.Cleaner("zz"); ok {
		t.Fatalf("Cleaner(zz) found, want missing")
	}
}
