package main

const examples = `
City Map Poster Generator
=========================

Usage:
  poster generate --city <city> --country <country> [options]

Examples:
  # Iconic grid patterns
  poster generate -c "New York" -C "USA" -t noir -d 12000           # Manhattan grid
  poster generate -c "Barcelona" -C "Spain" -t warm_beige -d 8000   # Eixample district grid

  # Waterfront & canals
  poster generate -c "Venice" -C "Italy" -t blueprint -d 4000       # Canal network
  poster generate -c "Amsterdam" -C "Netherlands" -t ocean -d 6000  # Concentric canals
  poster generate -c "Dubai" -C "UAE" -t midnight_blue -d 15000     # Palm & coastline

  # Radial patterns
  poster generate -c "Paris" -C "France" -t pastel_dream -d 10000   # Haussmann boulevards
  poster generate -c "Moscow" -C "Russia" -t noir -d 12000          # Ring roads

  # Organic old cities
  poster generate -c "Tokyo" -C "Japan" -t japanese_ink -d 15000    # Dense organic streets
  poster generate -c "Marrakech" -C "Morocco" -t terracotta -d 5000 # Medina maze
  poster generate -c "Rome" -C "Italy" -t warm_beige -d 8000        # Ancient street layout

  # Coastal cities
  poster generate -c "San Francisco" -C "USA" -t sunset -d 10000    # Peninsula grid
  poster generate -c "Sydney" -C "Australia" -t ocean -d 12000      # Harbor city
  poster generate -c "Mumbai" -C "India" -t contrast_zones -d 18000 # Coastal peninsula

  # River cities
  poster generate -c "London" -C "UK" -t noir -d 15000              # Thames curves
  poster generate -c "Budapest" -C "Hungary" -t copper_patina -d 8000  # Danube split

  # List themes
  poster themes

Options:
  --city, -c          City name (required)
  --country, -C       Country name (required)
  --theme, -t         Theme name (default: feature_based)
  --distance, -d      Map radius in meters (default: 29000)
  --network-type, -n  Street network: drive, all, walk or bike (default: drive)
  --no-cache          Fetch every layer upstream and write nothing to the cache
  --output-dir, -o    Output directory (default: posters)

Distance guide:
  4000-6000m   Small/dense cities (Venice, Amsterdam old center)
  8000-12000m  Medium cities, focused downtown (Paris, Barcelona)
  15000-20000m Large metros, full city view (Tokyo, Mumbai)

Available themes can be found in the 'themes/' directory.
Generated posters are saved to 'posters/' directory.
`
