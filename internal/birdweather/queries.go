package birdweather

// GraphQL query documents for the BirdWeather API. Pagination follows the
// cursor protocol: pageInfo { hasNextPage endCursor }.

const findStationQuery = `
query FindStation($query: String) {
  stations(query: $query, first: 1) {
    nodes { id name }
  }
}
`

const stationOverviewQuery = `
query StationOverview($id: ID!) {
  station(id: $id) {
    name
    location
    timezone
    type
    coords { lat lon }
    counts { detections species }
    earliestDetectionAt
    latestDetectionAt
    weather {
      temp
      feelsLike
      humidity
      pressure
      description
      windSpeed
      cloudiness
      sunrise
      sunset
    }
    sensors {
      environment {
        timestamp
        temperature
        humidity
        barometricPressure
        soundPressureLevel
        aqi
        eco2
        voc
      }
    }
  }
}
`

const detectionsQuery = `
query Detections($id: ID!, $first: Int, $after: String) {
  station(id: $id) {
    detections(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id
        timestamp
        speciesId
        species {
          commonName
          scientificName
        }
        confidence
        probability
        score
        certainty
      }
    }
  }
}
`

const environmentHistoryQuery = `
query EnvHistory($id: ID!, $first: Int, $after: String, $period: InputDuration) {
  station(id: $id) {
    sensors {
      environmentHistory(first: $first, after: $after, period: $period) {
        totalCount
        pageInfo { hasNextPage endCursor }
        nodes {
          timestamp
          temperature
          humidity
          barometricPressure
          soundPressureLevel
          aqi
          eco2
          voc
        }
      }
    }
  }
}
`

const topSpeciesQuery = `
query TopSpecies($id: ID!, $limit: Int, $period: InputDuration) {
  station(id: $id) {
    topSpecies(limit: $limit, period: $period) {
      speciesId
      count
      averageProbability
      breakdown { almostCertain veryLikely uncertain unlikely }
      species {
        commonName
        scientificName
        imageUrl
        thumbnailUrl
        color
        ebirdUrl
        wikipediaSummary
      }
    }
  }
}
`

const speciesByIDsQuery = `
query SpeciesByIds($ids: [ID!]) {
  allSpecies(ids: $ids) {
    nodes {
      id
      commonName
      scientificName
      imageUrl
      thumbnailUrl
      color
      ebirdUrl
      wikipediaSummary
    }
  }
}
`

const speciesProbabilitiesQuery = `
query Probabilities($id: ID!) {
  station(id: $id) {
    probabilities {
      speciesId
      species { commonName }
      weeks
    }
  }
}
`

const dailyDetectionCountsQuery = `
query DailyDetections($period: InputDuration, $stationIds: [ID!]) {
  dailyDetectionCounts(period: $period, stationIds: $stationIds) {
    date
    dayOfYear
    total
    counts {
      speciesId
      count
      species { commonName }
    }
  }
}
`

const timeOfDayCountsQuery = `
query TimeOfDay($id: ID!, $period: InputDuration) {
  station(id: $id) {
    timeOfDayDetectionCounts(period: $period) {
      speciesId
      count
      species { commonName }
      bins { count key }
    }
  }
}
`
