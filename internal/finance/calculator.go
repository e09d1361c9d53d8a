// Package finance provides closed-form financial calculations for goal
// planning, retirement projections, and debt analysis. All functions are pure;
// rates are annual decimals (0.07 for 7%) unless noted.
package finance

import "math"

// FutureValue returns the value of a lump sum after compounding for the given
// number of periods.
func FutureValue(presentValue, rate float64, periods int) float64 {
	if rate == 0 {
		return presentValue
	}
	return presentValue * math.Pow(1+rate, float64(periods))
}

// PresentValue discounts a future amount back over the given periods.
func PresentValue(futureValue, rate float64, periods int) float64 {
	if rate == 0 {
		return futureValue
	}
	return futureValue / math.Pow(1+rate, float64(periods))
}

// FutureValueAnnuity returns the future value of an ordinary annuity: equal
// payments at the end of each period.
func FutureValueAnnuity(payment, rate float64, periods int) float64 {
	if rate == 0 {
		return payment * float64(periods)
	}
	return payment * ((math.Pow(1+rate, float64(periods)) - 1) / rate)
}

// MonthlySavingsRequired returns the monthly contribution needed to reach
// goalAmount in the given years at an annual rate.
func MonthlySavingsRequired(goalAmount, rate float64, years int) float64 {
	months := float64(years * 12)
	if months <= 0 {
		return 0
	}
	monthlyRate := rate / 12
	if monthlyRate == 0 {
		return goalAmount / months
	}
	return goalAmount * monthlyRate / (math.Pow(1+monthlyRate, months) - 1)
}

// RetirementSavingsNeeded returns the balance needed to sustain the desired
// annual income at a withdrawal rate; the default 4% gives the 25x rule.
func RetirementSavingsNeeded(desiredAnnualIncome, withdrawalRate float64) float64 {
	if withdrawalRate == 0 {
		withdrawalRate = 0.04
	}
	return desiredAnnualIncome / withdrawalRate
}

// RetirementWithdrawalAmount returns the annual withdrawal that depletes
// balance over the given years at the given return rate.
func RetirementWithdrawalAmount(balance, rate float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	if rate == 0 {
		return balance / float64(years)
	}
	return balance * (rate / (1 - math.Pow(1+rate, -float64(years))))
}

// InflationAdjusted returns the nominal amount needed in the future to match
// today's purchasing power.
func InflationAdjusted(amount, inflationRate float64, years int) float64 {
	return amount * math.Pow(1+inflationRate, float64(years))
}

// RealReturnRate returns the inflation-adjusted return rate.
func RealReturnRate(nominalRate, inflationRate float64) float64 {
	return (1+nominalRate)/(1+inflationRate) - 1
}

// CAGR returns the compound annual growth rate between two values. Returns 0
// when the inputs cannot produce a meaningful rate.
func CAGR(beginningValue, endingValue float64, years int) float64 {
	if beginningValue <= 0 || endingValue <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(endingValue/beginningValue, 1/float64(years)) - 1
}

// LoanPayment returns the monthly payment on an amortizing loan.
func LoanPayment(principal, rate float64, years int) float64 {
	months := float64(years * 12)
	if months <= 0 {
		return 0
	}
	monthlyRate := rate / 12
	if monthlyRate == 0 {
		return principal / months
	}
	return principal * (monthlyRate * math.Pow(1+monthlyRate, months)) / (math.Pow(1+monthlyRate, months) - 1)
}

// EmergencyFundTarget returns the recommended emergency fund size. months
// defaults to 6 when non-positive.
func EmergencyFundTarget(monthlyExpenses float64, months int) float64 {
	if months <= 0 {
		months = 6
	}
	return monthlyExpenses * float64(months)
}

// SavingsRateNeeded returns the percentage of income that must be saved
// monthly to reach goalAmount in the given years.
func SavingsRateNeeded(currentIncome, goalAmount, rate float64, years int) float64 {
	monthlyIncome := currentIncome / 12
	if monthlyIncome <= 0 {
		return 0
	}
	return MonthlySavingsRequired(goalAmount, rate, years) / monthlyIncome * 100
}

// DebtPayoff describes how long a debt takes to clear at a fixed payment.
// Unpayable reports that the payment does not cover the accruing interest, in
// which case the other fields are zero.
type DebtPayoff struct {
	Months        float64
	Years         float64
	TotalPayments float64
	TotalInterest float64
	Unpayable     bool
}

// DebtPayoffTime returns how long paying a fixed monthly amount takes to clear
// a balance at the given APR.
func DebtPayoffTime(balance, payment, apr float64) DebtPayoff {
	monthlyRate := apr / 12
	if payment <= balance*monthlyRate || payment <= 0 {
		return DebtPayoff{Unpayable: true}
	}
	var months float64
	if monthlyRate == 0 {
		months = balance / payment
	} else {
		months = -math.Log(1-(balance*monthlyRate)/payment) / math.Log(1+monthlyRate)
	}
	totalPayments := payment * months
	return DebtPayoff{
		Months:        months,
		Years:         months / 12,
		TotalPayments: totalPayments,
		TotalInterest: totalPayments - balance,
	}
}

// CollegeProjection describes the savings plan for a four-year degree.
type CollegeProjection struct {
	CurrentAnnualCost    float64
	FutureAnnualCost     float64
	TotalFutureCost      float64
	MonthlySavingsNeeded float64
	AnnualSavingsNeeded  float64
}

// CollegeSavingsProjection projects college costs forward with education
// inflation and computes the savings plan to cover four years. Inflation
// defaults to 5% and investment return to 7% when zero.
func CollegeSavingsProjection(currentCost float64, yearsUntilCollege int, educationInflation, investmentReturn float64) CollegeProjection {
	if educationInflation == 0 {
		educationInflation = 0.05
	}
	if investmentReturn == 0 {
		investmentReturn = 0.07
	}
	futureCost := InflationAdjusted(currentCost, educationInflation, yearsUntilCollege)
	monthly := MonthlySavingsRequired(futureCost, investmentReturn, yearsUntilCollege)
	return CollegeProjection{
		CurrentAnnualCost:    currentCost,
		FutureAnnualCost:     futureCost,
		TotalFutureCost:      futureCost * 4,
		MonthlySavingsNeeded: monthly,
		AnnualSavingsNeeded:  monthly * 12,
	}
}
